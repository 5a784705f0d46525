// Package config loads quantscore settings from an optional YAML file and
// QUANTSCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// #region types

// Config holds all runtime settings. A zero Epsilon means the task default.
type Config struct {
	DBPath      string  `yaml:"db_path" json:"db_path"`
	Epsilon     float64 `yaml:"epsilon" json:"epsilon" validate:"gte=0,lt=1"`
	Tolerance   float64 `yaml:"tolerance" json:"tolerance" validate:"gt=0,lt=1"`
	StrictTruth bool    `yaml:"strict_truth" json:"strict_truth"`
	Addr        string  `yaml:"addr" json:"addr" validate:"required,hostname_port"`
	MetricsAddr string  `yaml:"metrics_addr" json:"metrics_addr" validate:"omitempty,hostname_port"`
	// MaxMessageBytes caps gRPC messages; the default fits a full T2B Evaluate request.
	MaxMessageBytes int       `yaml:"max_message_bytes" json:"max_message_bytes" validate:"gte=4194304"`
	Log             LogConfig `yaml:"log" json:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// #endregion types

// #region defaults

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tolerance:       1e-3,
		Addr:            "127.0.0.1:50051",
		MaxMessageBytes: 32 << 20,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// #endregion defaults

// #region load

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.DBPath = envOr("QUANTSCORE_DB", cfg.DBPath)
	cfg.Addr = envOr("QUANTSCORE_ADDR", cfg.Addr)
	cfg.MetricsAddr = envOr("QUANTSCORE_METRICS_ADDR", cfg.MetricsAddr)
	cfg.Log.Level = envOr("QUANTSCORE_LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("QUANTSCORE_EPSILON"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("QUANTSCORE_EPSILON: %w", err)
		}
		cfg.Epsilon = f
	}
	if v := os.Getenv("QUANTSCORE_STRICT_TRUTH"); v != "" {
		cfg.StrictTruth = v == "true" || v == "1"
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load
