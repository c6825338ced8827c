package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stride-score/internal/database"
	"github.com/yourusername/stride-score/internal/models"
)

// PostgresRaceEntryRepository implements RaceEntryRepository for PostgreSQL
type PostgresRaceEntryRepository struct {
	db *database.DB
}

// NewPostgresRaceEntryRepository creates a new race entry repository
func NewPostgresRaceEntryRepository(db *database.DB) RaceEntryRepository {
	return &PostgresRaceEntryRepository{db: db}
}

// Upsert inserts or replaces one audit row. The conflict target is the
// natural race key, so re-ingesting a corrected card overwrites in place.
func (r *PostgresRaceEntryRepository) Upsert(ctx context.Context, entry *models.RaceEntry) error {
	query := `
		INSERT INTO race_entries (race_date, venue, race_number, horse_name, driver_name, trainer_name, finish_position, race_class, discipline, is_qualifier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (race_date, venue, race_number, horse_name) DO UPDATE SET
			driver_name = EXCLUDED.driver_name,
			trainer_name = EXCLUDED.trainer_name,
			finish_position = EXCLUDED.finish_position,
			race_class = EXCLUDED.race_class,
			discipline = EXCLUDED.discipline,
			is_qualifier = EXCLUDED.is_qualifier,
			updated_at = NOW()
	`

	_, err := r.db.QuerierFrom(ctx).Exec(ctx, query,
		entry.RaceDate, entry.Venue, entry.RaceNumber, entry.HorseName,
		entry.DriverName, entry.TrainerName, entry.FinishPosition,
		entry.RaceClass, entry.Discipline, entry.IsQualifier,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert race entry: %w", err)
	}

	return nil
}

// ExistsForRace reports whether the race has already been applied
func (r *PostgresRaceEntryRepository) ExistsForRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM race_entries
			WHERE race_date = $1 AND venue = $2 AND race_number = $3
		)
	`

	var exists bool
	err := r.db.QuerierFrom(ctx).QueryRow(ctx, query, raceDate, venue, raceNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check race entry existence: %w", err)
	}

	return exists, nil
}

// LatestRaceDate returns the newest applied race date within a discipline
func (r *PostgresRaceEntryRepository) LatestRaceDate(ctx context.Context, discipline models.Discipline) (time.Time, error) {
	query := `
		SELECT MAX(race_date) FROM race_entries WHERE discipline = $1
	`

	var latest *time.Time
	err := r.db.QuerierFrom(ctx).QueryRow(ctx, query, discipline).Scan(&latest)
	if err == pgx.ErrNoRows {
		return time.Time{}, models.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest race date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}

	return *latest, nil
}

// GetByRace returns the audit rows for one race
func (r *PostgresRaceEntryRepository) GetByRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) ([]*models.RaceEntry, error) {
	query := `
		SELECT race_date, venue, race_number, horse_name, driver_name, trainer_name, finish_position, race_class, discipline, is_qualifier, created_at, updated_at
		FROM race_entries
		WHERE race_date = $1 AND venue = $2 AND race_number = $3
		ORDER BY horse_name ASC
	`

	rows, err := r.db.QuerierFrom(ctx).Query(ctx, query, raceDate, venue, raceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query race entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.RaceEntry
	for rows.Next() {
		entry := &models.RaceEntry{}
		err := rows.Scan(
			&entry.RaceDate, &entry.Venue, &entry.RaceNumber, &entry.HorseName,
			&entry.DriverName, &entry.TrainerName, &entry.FinishPosition,
			&entry.RaceClass, &entry.Discipline, &entry.IsQualifier,
			&entry.CreatedAt, &entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
