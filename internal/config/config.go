// Package config loads runtime configuration from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Worker    WorkerConfig    `koanf:"worker"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimit         int           `koanf:"rate_limit" validate:"gte=0"` // requests per window per IP, 0 disables
	RateWindow        time.Duration `koanf:"rate_window" validate:"gt=0"`
}

type DatasetConfig struct {
	Path           string        `koanf:"path" validate:"required"`
	FeatureColumns []string      `koanf:"feature_columns" validate:"min=1,dive,required"`
	Normalization  string        `koanf:"normalization" validate:"oneof=minmax zscore"`
	Watch          bool          `koanf:"watch"`
	Debounce       time.Duration `koanf:"debounce" validate:"gte=0"`
}

type RecommendConfig struct {
	Limit         int     `koanf:"limit" validate:"gte=1,lte=100"`
	MaxSeeds      int     `koanf:"max_seeds" validate:"gte=1"`
	Similarity    string  `koanf:"similarity" validate:"oneof=cosine euclidean"`
	NearestWeight float64 `koanf:"nearest_weight" validate:"gte=0,lte=1"`
	ArtistCap     int     `koanf:"artist_cap" validate:"gte=1"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite"`
	Path   string `koanf:"path" validate:"required"`
}

// SpotifyConfig enables metadata enrichment when both credentials are set.
type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	TokenURL     string        `koanf:"token_url" validate:"required,url"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=1"`
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gt=0"`
}

// Enabled reports whether credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

type WorkerConfig struct {
	Workers   int `koanf:"workers" validate:"gte=1"`
	QueueSize int `koanf:"queue_size" validate:"gte=1"`
	BatchSize int `koanf:"batch_size" validate:"gte=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimit:         120,
			RateWindow:        time.Minute,
		},
		Dataset: DatasetConfig{
			Path: "data/filtered_data.csv",
			FeatureColumns: []string{
				"danceability", "energy", "valence", "tempo", "acousticness",
				"instrumentalness", "liveness", "speechiness", "loudness",
			},
			Normalization: "minmax",
			Watch:         true,
			Debounce:      500 * time.Millisecond,
		},
		Recommend: RecommendConfig{
			Limit:         10,
			MaxSeeds:      3,
			Similarity:    "cosine",
			NearestWeight: 0.7,
			ArtistCap:     2,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "jukebox.db",
		},
		Spotify: SpotifyConfig{
			BaseURL:      "https://api.spotify.com/v1",
			TokenURL:     "https://accounts.spotify.com/api/token",
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
		Worker: WorkerConfig{
			Workers:   2,
			QueueSize: 100,
			BatchSize: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
