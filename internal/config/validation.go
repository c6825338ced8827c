// Package config provides configuration management for the StrideScore
// rating engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/stride-score/internal/rating"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for empty tags, which these are not.
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Rating.MinDaysNoDecay >= cfg.Rating.MaxDaysDecay {
		return fmt.Errorf("rating.min_days_no_decay (%d) must be less than rating.max_days_decay (%d)",
			cfg.Rating.MinDaysNoDecay, cfg.Rating.MaxDaysDecay)
	}

	if err := validateWeightTable(&cfg.Rating.Weights); err != nil {
		return err
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// validateWeightTable checks every fusion weight row sums to one and that
// the rows for partial partner data zero out the missing component.
func validateWeightTable(t *rating.WeightTable) error {
	rows := map[string]rating.Weights{
		"full":         t.Full,
		"driver_only":  t.DriverOnly,
		"trainer_only": t.TrainerOnly,
		"horse_only":   t.HorseOnly,
	}
	for name, w := range rows {
		if w.Horse < 0 || w.Driver < 0 || w.Trainer < 0 {
			return fmt.Errorf("fusion weight row %q has a negative weight", name)
		}
		if math.Abs(w.Horse+w.Driver+w.Trainer-1) > 1e-9 {
			return fmt.Errorf("fusion weight row %q must sum to 1, got %v", name, w.Horse+w.Driver+w.Trainer)
		}
	}

	if t.DriverOnly.Trainer != 0 {
		return fmt.Errorf("fusion weight row \"driver_only\" must give trainer weight 0")
	}
	if t.TrainerOnly.Driver != 0 {
		return fmt.Errorf("fusion weight row \"trainer_only\" must give driver weight 0")
	}
	if t.HorseOnly.Driver != 0 || t.HorseOnly.Trainer != 0 {
		return fmt.Errorf("fusion weight row \"horse_only\" must give driver and trainer weight 0")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
