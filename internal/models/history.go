package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is an immutable belief snapshot written once per entity per
// competitive race. FinishPosition is recorded as text because did-not-finish
// results are non-numeric. HorseName is set only for driver and trainer
// entries and names the partnered horse.
type HistoryEntry struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	Name           string      `db:"name" json:"name" validate:"required"`
	Discipline     Discipline  `db:"discipline" json:"discipline" validate:"required"`
	Class          EntityClass `db:"entity_class" json:"entity_class" validate:"required"`
	Mu             float64     `db:"mu" json:"mu"`
	Sigma          float64     `db:"sigma" json:"sigma" validate:"gt=0"`
	RaceDate       time.Time   `db:"race_date" json:"race_date" validate:"required"`
	Venue          string      `db:"venue" json:"venue"`
	FinishPosition string      `db:"finish_position" json:"finish_position"`
	RaceClass      *string     `db:"race_class" json:"race_class"`
	HorseName      *string     `db:"horse_name" json:"horse_name"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}
