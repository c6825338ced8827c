package repository

import (
	"fmt"

	"github.com/yourusername/stride-score/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Belief    BeliefRepository
	History   HistoryRepository
	RaceEntry RaceEntryRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Belief:    NewPostgresBeliefRepository(db),
		History:   NewPostgresHistoryRepository(db),
		RaceEntry: NewPostgresRaceEntryRepository(db),
	}, nil
}
