// Package config provides configuration management for the StrideScore
// rating engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "STRIDE_SCORE"

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders in the YAML file (${VAR})
// are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, so a minimal config file (database section only) yields a working
// engine with the canonical rating constants.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// Missing file: continue with defaults and environment variables.

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stride-score")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)
	v.SetDefault("database.ssl_mode", "disable")

	// Canonical rating constants.
	v.SetDefault("rating.default_mu", 1000.0)
	v.SetDefault("rating.default_sigma", 333.33)
	v.SetDefault("rating.min_days_no_decay", 28)
	v.SetDefault("rating.max_days_decay", 365)
	v.SetDefault("rating.max_decay", 0.50)
	v.SetDefault("rating.odds_beta", 166.5)

	// Canonical fusion weight table; see DESIGN.md for the full-data row.
	v.SetDefault("rating.weights.full.horse", 0.8)
	v.SetDefault("rating.weights.full.driver", 0.1)
	v.SetDefault("rating.weights.full.trainer", 0.1)
	v.SetDefault("rating.weights.driver_only.horse", 0.7)
	v.SetDefault("rating.weights.driver_only.driver", 0.3)
	v.SetDefault("rating.weights.driver_only.trainer", 0.0)
	v.SetDefault("rating.weights.trainer_only.horse", 0.8)
	v.SetDefault("rating.weights.trainer_only.driver", 0.0)
	v.SetDefault("rating.weights.trainer_only.trainer", 0.2)
	v.SetDefault("rating.weights.horse_only.horse", 1.0)
	v.SetDefault("rating.weights.horse_only.driver", 0.0)
	v.SetDefault("rating.weights.horse_only.trainer", 0.0)

	v.SetDefault("ingestion.input_dir", "data/incoming")
	v.SetDefault("ingestion.poll_schedule", "@every 60s")
	v.SetDefault("ingestion.batch_size", 100)
	v.SetDefault("ingestion.belief_cache_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
