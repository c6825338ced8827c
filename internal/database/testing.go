package database

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/stride-score/internal/config"
)

// SetupTestDB creates a test database connection, applies the schema and
// verifies connectivity. Tests that need Postgres call this and skip when
// no test database is reachable.
func SetupTestDB(t *testing.T) *DB {
	cfg, err := config.Load("../../config/config.yaml.test")
	if err != nil {
		t.Skipf("no test config available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema to test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	db.Close()
}
