package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix scopes every environment override, e.g. JUKEBOX_SERVER__ADDR.
	EnvPrefix = "JUKEBOX_"
	// PathEnvVar names a config file when no explicit path is given.
	PathEnvVar = "JUKEBOX_CONFIG"
)

// DefaultPaths are tried in order when neither an explicit path nor
// JUKEBOX_CONFIG is set.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
}

// Paths stored as comma separated strings when set from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"dataset.feature_columns",
}

// Load layers defaults, the YAML file at path (or a discovered one) and the
// environment, then validates the result. An explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	if err := k.Load(env.Provider("SPOTIFY_", ".", spotifyEnvTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load spotify environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return path, nil
	}
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config: %s: %w", PathEnvVar, err)
		}
		return envPath, nil
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// envTransform maps JUKEBOX_RECOMMEND__ARTIST_CAP to recommend.artist_cap.
func envTransform(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// spotifyEnvTransform accepts the conventional SPOTIFY_CLIENT_ID and
// SPOTIFY_CLIENT_SECRET variables and ignores the rest.
func spotifyEnvTransform(key string) string {
	switch key {
	case "SPOTIFY_CLIENT_ID":
		return "spotify.client_id"
	case "SPOTIFY_CLIENT_SECRET":
		return "spotify.client_secret"
	default:
		return ""
	}
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("config: set %s: %w", path, err)
		}
	}
	return nil
}
