package recommend

import (
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/jukebox/internal/features"
)

const (
	DefaultLimit         = 10
	DefaultMaxSeeds      = 3
	DefaultNearestWeight = 0.7
	DefaultArtistCap     = 2
)

type options struct {
	limit         int
	maxSeeds      int
	similarity    features.SimilarityFunc
	nearestWeight float64
	artistCap     int
	logger        zerolog.Logger
}

func defaultOptions() options {
	return options{
		limit:         DefaultLimit,
		maxSeeds:      DefaultMaxSeeds,
		similarity:    features.Cosine,
		nearestWeight: DefaultNearestWeight,
		artistCap:     DefaultArtistCap,
		logger:        zerolog.Nop(),
	}
}

// Option tunes a Recommender. Out of range values are ignored.
type Option func(*options)

// WithLimit caps the number of recommendations returned.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithMaxSeeds caps the number of seed names accepted per request.
func WithMaxSeeds(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSeeds = n
		}
	}
}

func WithSimilarity(fn features.SimilarityFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.similarity = fn
		}
	}
}

// WithNearestWeight sets the weight of the closest seed in playlist scoring.
func WithNearestWeight(w float64) Option {
	return func(o *options) {
		if w >= 0 && w <= 1 {
			o.nearestWeight = w
		}
	}
}

// WithArtistCap sets how many playlist results may share one artist.
func WithArtistCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.artistCap = n
		}
	}
}

//nolint:gocritic // zerolog loggers are passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
