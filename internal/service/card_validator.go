package service

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stride-score/internal/models"
)

// CardValidator validates normalized race records before they touch beliefs
type CardValidator struct {
	validate *validator.Validate
	logger   *logrus.Entry
}

// NewCardValidator creates a new card validator
func NewCardValidator(logger *logrus.Logger) (*CardValidator, error) {
	v := validator.New()

	err := v.RegisterValidation("discipline", func(fl validator.FieldLevel) bool {
		switch models.Discipline(fl.Field().String()) {
		case models.DisciplineTrot, models.DisciplinePace:
			return true
		default:
			return false
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register discipline validation: %w", err)
	}

	return &CardValidator{
		validate: v,
		logger:   logger.WithField("component", "validator"),
	}, nil
}

// ValidateRace validates one normalized race record and returns every
// problem found. An empty slice means the race may be applied.
func (v *CardValidator) ValidateRace(race *models.RaceRecord) []string {
	var errs []string

	if err := v.validate.Struct(race); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				errs = append(errs, fmt.Sprintf("%s failed %s validation", fieldErr.Namespace(), fieldErr.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if race.RaceDate.After(time.Now().Add(24 * time.Hour)) {
		errs = append(errs, fmt.Sprintf("race date %s is in the future", race.RaceDate.Format("2006-01-02")))
	}

	seen := make(map[string]bool, len(race.Starters))
	for _, starter := range race.Starters {
		if seen[starter.HorseName] {
			errs = append(errs, fmt.Sprintf("horse %q appears twice in one race", starter.HorseName))
		}
		seen[starter.HorseName] = true

		if starter.Finish.Valid && !starter.Finish.DNF && starter.Finish.Place <= 0 {
			errs = append(errs, fmt.Sprintf("horse %q has non-positive finish position %d", starter.HorseName, starter.Finish.Place))
		}
	}

	return errs
}

// RankedStarters returns the starters usable as a ranking signal.
func RankedStarters(race *models.RaceRecord) []models.Starter {
	var ranked []models.Starter
	for _, starter := range race.Starters {
		if starter.Finish.IsRanked() {
			ranked = append(ranked, starter)
		}
	}
	return ranked
}
