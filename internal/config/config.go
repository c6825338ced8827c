// Package config provides configuration management for the StrideScore
// rating engine.
package config

import (
	"fmt"

	"github.com/yourusername/stride-score/internal/rating"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Rating    RatingConfig    `mapstructure:"rating" validate:"required"`
	Ingestion IngestionConfig `mapstructure:"ingestion" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RatingConfig holds every tunable of the rating core: the prior belief,
// the inactivity decay curve, the fusion weight table, and the odds scale.
// Components receive these at construction rather than reading package
// constants, so deployments and tests can vary them independently.
type RatingConfig struct {
	DefaultMu      float64            `mapstructure:"default_mu" validate:"required,gt=0"`
	DefaultSigma   float64            `mapstructure:"default_sigma" validate:"required,gt=0"`
	MinDaysNoDecay int                `mapstructure:"min_days_no_decay" validate:"gte=0"`
	MaxDaysDecay   int                `mapstructure:"max_days_decay" validate:"required,gt=0"`
	MaxDecay       float64            `mapstructure:"max_decay" validate:"gte=0,lte=1"`
	OddsBeta       float64            `mapstructure:"odds_beta" validate:"required,gt=0"`
	Weights        rating.WeightTable `mapstructure:"weights"`
}

// DecayParams maps the configuration onto the decay curve parameters.
func (r *RatingConfig) DecayParams() rating.DecayParams {
	return rating.DecayParams{
		MinDaysNoDecay: r.MinDaysNoDecay,
		MaxDaysDecay:   r.MaxDaysDecay,
		MaxDecay:       r.MaxDecay,
	}
}

// Env maps the configuration onto the skill-update environment.
func (r *RatingConfig) Env() rating.Env {
	return rating.NewEnv(r.DefaultMu, r.DefaultSigma)
}

// IngestionConfig represents result-card ingestion configuration
type IngestionConfig struct {
	InputDir       string `mapstructure:"input_dir" validate:"required"`
	ArchiveDir     string `mapstructure:"archive_dir"`
	PollSchedule   string `mapstructure:"poll_schedule" validate:"required"`
	BatchSize      int    `mapstructure:"batch_size" validate:"required,gt=0"`
	BeliefCacheTTL int    `mapstructure:"belief_cache_ttl_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
