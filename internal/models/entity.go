package models

import (
	"strings"
	"time"
)

// Discipline identifies one of the two fully isolated rating universes.
// Ratings never aggregate across disciplines: the same name in each
// discipline owns two independent belief records.
type Discipline string

const (
	DisciplineTrot Discipline = "trot"
	DisciplinePace Discipline = "pace"
)

// ParseDiscipline maps a gait string from a race card to a Discipline.
// Card text occasionally reads "Galt" where "Trot" is meant.
func ParseDiscipline(gait string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(gait)) {
	case "trot", "galt":
		return DisciplineTrot, nil
	case "pace":
		return DisciplinePace, nil
	default:
		return "", ErrUnknownDiscipline
	}
}

// EntityClass identifies which kind of competitor a belief belongs to.
type EntityClass string

const (
	ClassHorse   EntityClass = "horse"
	ClassDriver  EntityClass = "driver"
	ClassTrainer EntityClass = "trainer"
)

// Belief is the persisted skill estimate for one entity within one
// discipline. Sigma is strictly positive at all times.
type Belief struct {
	Name       string      `db:"name" json:"name" validate:"required"`
	Discipline Discipline  `db:"discipline" json:"discipline" validate:"required"`
	Class      EntityClass `db:"entity_class" json:"entity_class" validate:"required"`
	Mu         float64     `db:"mu" json:"mu"`
	Sigma      float64     `db:"sigma" json:"sigma" validate:"gt=0"`
	LastActive time.Time   `db:"last_active" json:"last_active"`
	LastVenue  *string     `db:"last_venue" json:"last_venue"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// DaysInactive returns whole days between the last activity and asOf.
// Negative spans (a record touched by a later race) count as zero.
func (b *Belief) DaysInactive(asOf time.Time) int {
	if b.LastActive.IsZero() {
		return 0
	}
	days := int(asOf.Sub(b.LastActive).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NormalizeName canonicalizes an entity name for identity purposes:
// lowercase, trimmed, inner whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
