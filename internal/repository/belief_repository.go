package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stride-score/internal/database"
	"github.com/yourusername/stride-score/internal/models"
)

// PostgresBeliefRepository implements BeliefRepository for PostgreSQL
type PostgresBeliefRepository struct {
	db *database.DB
}

// NewPostgresBeliefRepository creates a new belief repository
func NewPostgresBeliefRepository(db *database.DB) BeliefRepository {
	return &PostgresBeliefRepository{db: db}
}

const beliefColumns = `discipline, entity_class, name, mu, sigma, last_active, last_venue, created_at, updated_at`

func scanBelief(row pgx.Row) (*models.Belief, error) {
	b := &models.Belief{}
	err := row.Scan(
		&b.Discipline, &b.Class, &b.Name, &b.Mu, &b.Sigma,
		&b.LastActive, &b.LastVenue, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetByName retrieves the current belief for one entity
func (r *PostgresBeliefRepository) GetByName(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string) (*models.Belief, error) {
	query := `
		SELECT ` + beliefColumns + `
		FROM ratings
		WHERE discipline = $1 AND entity_class = $2 AND name = $3
	`

	b, err := scanBelief(r.db.QuerierFrom(ctx).QueryRow(ctx, query, discipline, class, name))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get belief: %w", err)
	}

	return b, nil
}

// GetOrCreate retrieves a belief, inserting the default prior when the
// entity has never been seen. New entities start with a zero last_active so
// the first competitive race applies no decay.
func (r *PostgresBeliefRepository) GetOrCreate(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, defaultMu, defaultSigma float64) (*models.Belief, bool, error) {
	b, err := r.GetByName(ctx, discipline, class, name)
	if err == nil {
		return b, false, nil
	}
	if err != models.ErrNotFound {
		return nil, false, err
	}

	query := `
		INSERT INTO ratings (discipline, entity_class, name, mu, sigma, last_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (discipline, entity_class, name) DO NOTHING
		RETURNING ` + beliefColumns

	b, err = scanBelief(r.db.QuerierFrom(ctx).QueryRow(ctx, query,
		discipline, class, name, defaultMu, defaultSigma, time.Time{},
	))
	if err == pgx.ErrNoRows {
		// Lost the insert race; the row exists now.
		b, err = r.GetByName(ctx, discipline, class, name)
		return b, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create belief: %w", err)
	}

	return b, true, nil
}

// Update persists a changed belief
func (r *PostgresBeliefRepository) Update(ctx context.Context, belief *models.Belief) error {
	query := `
		UPDATE ratings SET
			mu = $4, sigma = $5, last_active = $6, last_venue = $7, updated_at = NOW()
		WHERE discipline = $1 AND entity_class = $2 AND name = $3
	`

	commandTag, err := r.db.QuerierFrom(ctx).Exec(ctx, query,
		belief.Discipline, belief.Class, belief.Name,
		belief.Mu, belief.Sigma, belief.LastActive, belief.LastVenue,
	)
	if err != nil {
		return fmt.Errorf("failed to update belief: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Touch refreshes recency fields without touching mu or sigma
func (r *PostgresBeliefRepository) Touch(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, lastActive time.Time, venue string) error {
	query := `
		UPDATE ratings SET
			last_active = GREATEST(last_active, $4), last_venue = $5, updated_at = NOW()
		WHERE discipline = $1 AND entity_class = $2 AND name = $3
	`

	commandTag, err := r.db.QuerierFrom(ctx).Exec(ctx, query,
		discipline, class, name, lastActive, venue,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh activity: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// List returns beliefs for one discipline and class, strongest first
func (r *PostgresBeliefRepository) List(ctx context.Context, discipline models.Discipline, class models.EntityClass, limit int) ([]*models.Belief, error) {
	query := `
		SELECT ` + beliefColumns + `
		FROM ratings
		WHERE discipline = $1 AND entity_class = $2
		ORDER BY mu DESC
		LIMIT $3
	`

	rows, err := r.db.QuerierFrom(ctx).Query(ctx, query, discipline, class, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query beliefs: %w", err)
	}
	defer rows.Close()

	var beliefs []*models.Belief
	for rows.Next() {
		b, err := scanBelief(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan belief: %w", err)
		}
		beliefs = append(beliefs, b)
	}

	return beliefs, rows.Err()
}
