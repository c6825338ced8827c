package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stride-score/internal/models"
)

func newTestSource(t *testing.T) (*FilesystemSource, string) {
	t.Helper()
	inputDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")

	log := logrus.New()
	log.SetOutput(os.Stderr)

	src, err := NewFilesystemSource(inputDir, archiveDir, log)
	require.NoError(t, err)
	return src, inputDir
}

func writeCard(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestListPendingSortsAndFilters(t *testing.T) {
	src, inputDir := newTestSource(t)

	writeCard(t, inputDir, "2024-02-02.json", "{}")
	writeCard(t, inputDir, "2024-02-01.json", "{}")
	writeCard(t, inputDir, "notes.txt", "ignore me")

	ids, err := src.ListPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01.json", "2024-02-02.json"}, ids)
}

func TestFetchDecodesCard(t *testing.T) {
	src, inputDir := newTestSource(t)

	writeCard(t, inputDir, "card.json", `{
		"source": "vincennes 2024-02-03",
		"races": [{
			"discipline": "trot",
			"race_date": "2024-02-03T13:15:00Z",
			"venue": "Vincennes",
			"race_number": 1,
			"starters": [
				{"horse_name": "Idao", "driver_name": "C. Leclerc", "finish": 1},
				{"horse_name": "Hooker", "finish": "DNF"},
				{"horse_name": "Vacances", "finish": null, "is_scratched": true}
			]
		}]
	}`)

	card, err := src.Fetch(context.Background(), "card.json")
	require.NoError(t, err)
	assert.Equal(t, "vincennes 2024-02-03", card.Source)
	require.Len(t, card.Races, 1)

	race := card.Races[0]
	assert.Equal(t, models.DisciplineTrot, race.Discipline)
	require.Len(t, race.Starters, 3)
	assert.True(t, race.Starters[0].Finish.IsRanked())
	assert.True(t, race.Starters[1].Finish.DNF)
	assert.False(t, race.Starters[2].Finish.Valid)
	assert.True(t, race.Starters[2].IsScratched)
}

func TestFetchDefaultsSourceToID(t *testing.T) {
	src, inputDir := newTestSource(t)
	writeCard(t, inputDir, "unnamed.json", `{"races": []}`)

	card, err := src.Fetch(context.Background(), "unnamed.json")
	require.NoError(t, err)
	assert.Equal(t, "unnamed.json", card.Source)
}

func TestFetchMissingFile(t *testing.T) {
	src, _ := newTestSource(t)

	_, err := src.Fetch(context.Background(), "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRejectsMalformedJSON(t *testing.T) {
	src, inputDir := newTestSource(t)
	writeCard(t, inputDir, "broken.json", `{"races": [`)

	_, err := src.Fetch(context.Background(), "broken.json")
	require.Error(t, err)

	var srcErr CardSourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestArchiveRemovesFromPending(t *testing.T) {
	src, inputDir := newTestSource(t)
	writeCard(t, inputDir, "done.json", "{}")

	require.NoError(t, src.Archive(context.Background(), "done.json"))

	ids, err := src.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
