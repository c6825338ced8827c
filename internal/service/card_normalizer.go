package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stride-score/internal/models"
)

// CardNormalizer canonicalizes raw race records before validation. Identity
// is name-based, so every entity name is lowercased and whitespace-collapsed
// here and nowhere else.
type CardNormalizer struct {
	logger *logrus.Entry
}

// NewCardNormalizer creates a new card normalizer
func NewCardNormalizer(logger *logrus.Logger) *CardNormalizer {
	return &CardNormalizer{logger: logger.WithField("component", "normalizer")}
}

// NormalizeRace canonicalizes one race record in place: the discipline is
// mapped through gait aliases, entity names are normalized, and scratched
// starters are dropped. Starters without a horse name cannot be identified
// and are dropped with a warning.
func (n *CardNormalizer) NormalizeRace(race *models.RaceRecord) error {
	discipline, err := models.ParseDiscipline(string(race.Discipline))
	if err != nil {
		return fmt.Errorf("failed to normalize race discipline %q: %w", race.Discipline, err)
	}
	race.Discipline = discipline
	race.Venue = strings.TrimSpace(race.Venue)

	kept := race.Starters[:0]
	for _, starter := range race.Starters {
		if starter.IsScratched {
			continue
		}
		starter.HorseName = models.NormalizeName(starter.HorseName)
		if starter.HorseName == "" {
			n.logger.WithFields(logrus.Fields{
				"venue":       race.Venue,
				"race_number": race.RaceNumber,
			}).Warn("Dropping starter without horse name")
			continue
		}
		starter.DriverName = normalizeOptionalName(starter.DriverName)
		starter.TrainerName = normalizeOptionalName(starter.TrainerName)
		kept = append(kept, starter)
	}
	race.Starters = kept

	return nil
}

func normalizeOptionalName(name *string) *string {
	if name == nil {
		return nil
	}
	normalized := models.NormalizeName(*name)
	if normalized == "" {
		return nil
	}
	return &normalized
}
