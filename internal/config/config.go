// Package config loads the storefront client configuration from a YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the storefront client configuration.
type Config struct {
	// BackendURL is the backend origin, without the /api/v1 prefix.
	BackendURL string `yaml:"backend_url"`
	// TokenFile is where the bearer credential is persisted across runs.
	TokenFile string `yaml:"token_file"`
	// RequestTimeout bounds every backend call.
	RequestTimeout Duration `yaml:"request_timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		BackendURL:     "https://e-commarce-3rq4.onrender.com",
		TokenFile:      filepath.Join(home, ".storefront", "authToken"),
		RequestTimeout: Duration(30 * time.Second),
		LogLevel:       "info",
	}
}

// Load reads the config file at path, falling back to defaults for absent
// fields, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("backend_url is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(30 * time.Second)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOREFRONT_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("STOREFRONT_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = Duration(d)
		}
	}
}
