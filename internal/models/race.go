package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FinishPosition holds a starter's finishing position as reported on the
// card: a positive integer, "DNF", or absent entirely.
type FinishPosition struct {
	Place int
	DNF   bool
	Valid bool
}

// IsRanked reports whether the position can be used as a ranking signal.
func (f FinishPosition) IsRanked() bool {
	return f.Valid && !f.DNF && f.Place > 0
}

// String renders the position the way history rows record it.
func (f FinishPosition) String() string {
	if !f.Valid {
		return ""
	}
	if f.DNF {
		return "DNF"
	}
	return strconv.Itoa(f.Place)
}

// UnmarshalJSON accepts an integer, the string "DNF", a numeric string, or
// null. Anything else is a malformed position and unmarshals as not valid
// rather than failing the whole card.
func (f *FinishPosition) UnmarshalJSON(data []byte) error {
	*f = FinishPosition{}
	if string(data) == "null" {
		return nil
	}

	var place int
	if err := json.Unmarshal(data, &place); err == nil {
		f.Place = place
		f.Valid = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse finish position %s: %w", data, err)
	}
	if s == "DNF" || s == "dnf" {
		f.DNF = true
		f.Valid = true
		return nil
	}
	if place, err := strconv.Atoi(s); err == nil {
		f.Place = place
		f.Valid = true
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (f FinishPosition) MarshalJSON() ([]byte, error) {
	switch {
	case !f.Valid:
		return []byte("null"), nil
	case f.DNF:
		return json.Marshal("DNF")
	default:
		return json.Marshal(f.Place)
	}
}

// Starter is one race participant as produced by the upstream extraction
// step. Odds text is informational only and never feeds the engine.
type Starter struct {
	HorseName   string         `json:"horse_name" validate:"required"`
	DriverName  *string        `json:"driver_name"`
	TrainerName *string        `json:"trainer_name"`
	Finish      FinishPosition `json:"finish"`
	IsScratched bool           `json:"is_scratched"`
	Odds        string         `json:"odds"`
}

// RaceRecord is one finished (or qualifier) race from a result card.
type RaceRecord struct {
	Discipline  Discipline `json:"discipline" validate:"required,discipline"`
	RaceDate    time.Time  `json:"race_date" validate:"required"`
	Venue       string     `json:"venue" validate:"required"`
	RaceNumber  int        `json:"race_number" validate:"required,gt=0"`
	RaceClass   *string    `json:"race_class"`
	IsQualifier bool       `json:"is_qualifier"`
	Starters    []Starter  `json:"starters" validate:"required,min=1,dive"`
}

// Card is one ingestion unit: every race extracted from a single result
// sheet, in no guaranteed order.
type Card struct {
	Source string       `json:"source"`
	Races  []RaceRecord `json:"races" validate:"required,min=1,dive"`
}

// RaceEntry is the audit row persisted per (race date, venue, race number,
// horse). Re-ingesting the same race replaces the earlier row, which makes
// the audit table the linearization point for idempotent ingestion.
type RaceEntry struct {
	RaceDate       time.Time   `db:"race_date" json:"race_date"`
	Venue          string      `db:"venue" json:"venue"`
	RaceNumber     int         `db:"race_number" json:"race_number"`
	HorseName      string      `db:"horse_name" json:"horse_name"`
	DriverName     *string     `db:"driver_name" json:"driver_name"`
	TrainerName    *string     `db:"trainer_name" json:"trainer_name"`
	FinishPosition string      `db:"finish_position" json:"finish_position"`
	RaceClass      *string     `db:"race_class" json:"race_class"`
	Discipline     Discipline  `db:"discipline" json:"discipline"`
	IsQualifier    bool        `db:"is_qualifier" json:"is_qualifier"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}
