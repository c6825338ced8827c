package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stride-score/internal/models"
)

// FilesystemSource reads JSON result cards dropped into an input directory
// by the extraction pipeline. Consumed cards move to an archive directory so
// a crashed run never loses or double-lists a file.
type FilesystemSource struct {
	inputDir   string
	archiveDir string
	logger     *logrus.Entry
}

// NewFilesystemSource creates a card source over the given directories.
// The archive directory is created if missing.
func NewFilesystemSource(inputDir, archiveDir string, logger *logrus.Logger) (*FilesystemSource, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", inputDir)
	}

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &FilesystemSource{
		inputDir:   inputDir,
		archiveDir: archiveDir,
		logger:     logger.WithField("component", "card_source"),
	}, nil
}

// Name returns the name of the card source
func (s *FilesystemSource) Name() string {
	return "filesystem"
}

// ListPending returns the JSON files in the input directory, sorted by name.
// Extraction names files by date, so lexical order is chronological order.
func (s *FilesystemSource) ListPending(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return nil, NewCardSourceError(s.Name(), ErrCodeIOError, "failed to read input directory", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)

	return ids, nil
}

// Fetch loads and decodes one card file
func (s *FilesystemSource) Fetch(ctx context.Context, id string) (*models.Card, error) {
	path := filepath.Join(s.inputDir, filepath.Base(id))

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, NewCardSourceError(s.Name(), ErrCodeNotFound, "card file missing", ErrNotFound)
	}
	if err != nil {
		return nil, NewCardSourceError(s.Name(), ErrCodeIOError, "failed to read card file", err)
	}

	card := &models.Card{}
	if err := json.Unmarshal(data, card); err != nil {
		return nil, NewCardSourceError(s.Name(), ErrCodeInvalidData, "failed to decode card", err)
	}
	if card.Source == "" {
		card.Source = id
	}

	return card, nil
}

// Archive moves a consumed card file into the archive directory
func (s *FilesystemSource) Archive(ctx context.Context, id string) error {
	name := filepath.Base(id)
	src := filepath.Join(s.inputDir, name)
	dst := filepath.Join(s.archiveDir, name)

	if err := os.Rename(src, dst); err != nil {
		return NewCardSourceError(s.Name(), ErrCodeIOError, "failed to archive card", err)
	}

	s.logger.WithField("card", name).Debug("Card archived")
	return nil
}
