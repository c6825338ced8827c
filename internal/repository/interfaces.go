package repository

import (
	"context"
	"time"

	"github.com/yourusername/stride-score/internal/models"
)

// BeliefRepository manages the current belief per (discipline, class, name)
type BeliefRepository interface {
	// GetByName returns the stored belief, or models.ErrNotFound.
	GetByName(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string) (*models.Belief, error)
	// GetOrCreate returns the stored belief, creating it with the given
	// default prior when absent. The second return reports whether a new
	// row was created.
	GetOrCreate(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, defaultMu, defaultSigma float64) (*models.Belief, bool, error)
	// Update persists a changed belief, including recency fields.
	Update(ctx context.Context, belief *models.Belief) error
	// Touch refreshes last_active and last_venue without changing mu or
	// sigma. Used for qualifiers.
	Touch(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, lastActive time.Time, venue string) error
	// List returns all beliefs for one discipline and class, ordered by
	// descending mu.
	List(ctx context.Context, discipline models.Discipline, class models.EntityClass, limit int) ([]*models.Belief, error)
}

// HistoryRepository appends immutable belief snapshots
type HistoryRepository interface {
	// Append records one post-update snapshot.
	Append(ctx context.Context, entry *models.HistoryEntry) error
	// GetRecentByEntity returns the most recent snapshots for one entity,
	// newest first.
	GetRecentByEntity(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, limit int) ([]*models.HistoryEntry, error)
}

// RaceEntryRepository manages the per-starter audit rows that double as the
// engine's idempotency record
type RaceEntryRepository interface {
	// Upsert inserts or refreshes one audit row keyed by
	// (race_date, venue, race_number, horse_name).
	Upsert(ctx context.Context, entry *models.RaceEntry) error
	// ExistsForRace reports whether any audit row exists for the race key.
	ExistsForRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) (bool, error)
	// LatestRaceDate returns the newest applied race date for a
	// discipline, or models.ErrNotFound when nothing has been applied.
	LatestRaceDate(ctx context.Context, discipline models.Discipline) (time.Time, error)
	// GetByRace returns the audit rows for one race.
	GetByRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) ([]*models.RaceEntry, error)
}
