package database

import (
	"context"
	"fmt"
)

// schema holds the DDL for the rating store. One database serves both
// disciplines: every table is keyed by discipline so the two rating
// universes stay isolated without duplicated schema.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ratings (
		discipline    TEXT NOT NULL,
		entity_class  TEXT NOT NULL,
		name          TEXT NOT NULL,
		mu            DOUBLE PRECISION NOT NULL,
		sigma         DOUBLE PRECISION NOT NULL CHECK (sigma > 0),
		last_active   TIMESTAMPTZ NOT NULL,
		last_venue    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (discipline, entity_class, name)
	)`,
	`CREATE TABLE IF NOT EXISTS rating_history (
		id              UUID PRIMARY KEY,
		discipline      TEXT NOT NULL,
		entity_class    TEXT NOT NULL,
		name            TEXT NOT NULL,
		mu              DOUBLE PRECISION NOT NULL,
		sigma           DOUBLE PRECISION NOT NULL,
		race_date       TIMESTAMPTZ NOT NULL,
		venue           TEXT NOT NULL DEFAULT '',
		finish_position TEXT NOT NULL DEFAULT '',
		race_class      TEXT,
		horse_name      TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rating_history_entity
		ON rating_history (discipline, entity_class, name, race_date DESC)`,
	`CREATE TABLE IF NOT EXISTS race_entries (
		race_date       TIMESTAMPTZ NOT NULL,
		venue           TEXT NOT NULL,
		race_number     INTEGER NOT NULL,
		horse_name      TEXT NOT NULL,
		driver_name     TEXT,
		trainer_name    TEXT,
		finish_position TEXT NOT NULL DEFAULT '',
		race_class      TEXT,
		discipline      TEXT NOT NULL,
		is_qualifier    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (race_date, venue, race_number, horse_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_race_entries_discipline_date
		ON race_entries (discipline, race_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_race_entries_driver
		ON race_entries (driver_name)`,
	`CREATE INDEX IF NOT EXISTS idx_race_entries_trainer
		ON race_entries (trainer_name)`,
}

// InitSchema creates the rating store tables and indexes if they do not
// exist. Safe to call repeatedly.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
