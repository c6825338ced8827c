package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/stride-score/internal/models"
)

// CardSource defines the interface for retrieving result cards produced by
// the upstream extraction step
type CardSource interface {
	// ListPending returns identifiers of cards waiting to be ingested,
	// oldest first.
	ListPending(ctx context.Context) ([]string, error)

	// Fetch loads and decodes one card.
	Fetch(ctx context.Context, id string) (*models.Card, error)

	// Archive marks a card as consumed so it is not listed again.
	Archive(ctx context.Context, id string) error

	// Name returns the name of the card source
	Name() string
}

// CardSourceError represents errors from card source operations
type CardSourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e CardSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e CardSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound    = "not_found"
	ErrCodeInvalidData = "invalid_data"
	ErrCodeIOError     = "io_error"
)

var (
	ErrNotFound    = errors.New("card not found")
	ErrInvalidData = errors.New("invalid card format")
)

// NewCardSourceError creates a new card source error
func NewCardSourceError(source, code, message string, err error) CardSourceError {
	return CardSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
