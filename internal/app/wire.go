// Package app turns a loaded configuration into the components shared by the
// API server and the CLI.
package app

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/jukebox/internal/config"
	"github.com/ewilliams-labs/jukebox/internal/core/ports"
	"github.com/ewilliams-labs/jukebox/internal/dataset"
	"github.com/ewilliams-labs/jukebox/internal/features"
	"github.com/ewilliams-labs/jukebox/internal/logging"
	"github.com/ewilliams-labs/jukebox/internal/recommend"
)

// LoggingConfig maps the logging section onto the logger settings.
func LoggingConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.Caller = cfg.Logging.Caller
	return lc
}

// DatasetOptions maps the dataset section onto loader options.
func DatasetOptions(cfg *config.Config) (dataset.Options, error) {
	norm, err := features.ParseNormalization(cfg.Dataset.Normalization)
	if err != nil {
		return dataset.Options{}, fmt.Errorf("app: %w", err)
	}
	return dataset.Options{
		Path:          cfg.Dataset.Path,
		Columns:       cfg.Dataset.FeatureColumns,
		Normalization: norm,
	}, nil
}

// LoadStore loads the configured dataset and wraps it in a Store.
func LoadStore(cfg *config.Config) (*dataset.Store, dataset.Options, error) {
	opts, err := DatasetOptions(cfg)
	if err != nil {
		return nil, opts, err
	}
	snap, err := dataset.Load(opts)
	if err != nil {
		return nil, opts, err
	}
	return dataset.NewStore(snap), opts, nil
}

// Recommenders builds one recommender per supported mode.
//
//nolint:gocritic // zerolog loggers are passed by value
func Recommenders(cfg *config.Config, src recommend.SnapshotSource, logger zerolog.Logger) ([]ports.Recommender, error) {
	sim, err := features.ParseMetric(cfg.Recommend.Similarity)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	common := []recommend.Option{
		recommend.WithLimit(cfg.Recommend.Limit),
		recommend.WithMaxSeeds(cfg.Recommend.MaxSeeds),
		recommend.WithSimilarity(sim),
		recommend.WithLogger(logger),
	}
	playlist := append(slices.Clone(common),
		recommend.WithNearestWeight(cfg.Recommend.NearestWeight),
		recommend.WithArtistCap(cfg.Recommend.ArtistCap),
	)
	return []ports.Recommender{
		recommend.NewSongRecommender(src, common...),
		recommend.NewPlaylistRecommender(src, playlist...),
	}, nil
}
