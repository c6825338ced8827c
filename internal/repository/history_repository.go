package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/stride-score/internal/database"
	"github.com/yourusername/stride-score/internal/models"
)

// PostgresHistoryRepository implements HistoryRepository for PostgreSQL
type PostgresHistoryRepository struct {
	db *database.DB
}

// NewPostgresHistoryRepository creates a new history repository
func NewPostgresHistoryRepository(db *database.DB) HistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Append records one immutable belief snapshot
func (r *PostgresHistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO rating_history (id, discipline, entity_class, name, mu, sigma, race_date, venue, finish_position, race_class, horse_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.QuerierFrom(ctx).Exec(ctx, query,
		entry.ID, entry.Discipline, entry.Class, entry.Name, entry.Mu, entry.Sigma,
		entry.RaceDate, entry.Venue, entry.FinishPosition, entry.RaceClass, entry.HorseName,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// GetRecentByEntity returns recent snapshots for one entity, newest first
func (r *PostgresHistoryRepository) GetRecentByEntity(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, discipline, entity_class, name, mu, sigma, race_date, venue, finish_position, race_class, horse_name, created_at
		FROM rating_history
		WHERE discipline = $1 AND entity_class = $2 AND name = $3
		ORDER BY race_date DESC, created_at DESC
		LIMIT $4
	`

	rows, err := r.db.QuerierFrom(ctx).Query(ctx, query, discipline, class, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry := &models.HistoryEntry{}
		err := rows.Scan(
			&entry.ID, &entry.Discipline, &entry.Class, &entry.Name, &entry.Mu, &entry.Sigma,
			&entry.RaceDate, &entry.Venue, &entry.FinishPosition, &entry.RaceClass, &entry.HorseName, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
