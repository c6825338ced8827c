package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stride-score/internal/config"
	"github.com/yourusername/stride-score/internal/models"
	"github.com/yourusername/stride-score/internal/rating"
	"github.com/yourusername/stride-score/internal/repository"
)

// MockBeliefRepository mocks the belief repository
type MockBeliefRepository struct {
	mock.Mock
}

func (m *MockBeliefRepository) GetByName(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string) (*models.Belief, error) {
	args := m.Called(ctx, discipline, class, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Belief), args.Error(1)
}

func (m *MockBeliefRepository) GetOrCreate(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, defaultMu, defaultSigma float64) (*models.Belief, bool, error) {
	args := m.Called(ctx, discipline, class, name, defaultMu, defaultSigma)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Belief), args.Bool(1), args.Error(2)
}

func (m *MockBeliefRepository) Update(ctx context.Context, belief *models.Belief) error {
	args := m.Called(ctx, belief)
	return args.Error(0)
}

func (m *MockBeliefRepository) Touch(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, lastActive time.Time, venue string) error {
	args := m.Called(ctx, discipline, class, name, lastActive, venue)
	return args.Error(0)
}

func (m *MockBeliefRepository) List(ctx context.Context, discipline models.Discipline, class models.EntityClass, limit int) ([]*models.Belief, error) {
	args := m.Called(ctx, discipline, class, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Belief), args.Error(1)
}

// MockHistoryRepository mocks the history repository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetRecentByEntity(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, limit int) ([]*models.HistoryEntry, error) {
	args := m.Called(ctx, discipline, class, name, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Error(1)
}

// MockRaceEntryRepository mocks the race entry repository
type MockRaceEntryRepository struct {
	mock.Mock
}

func (m *MockRaceEntryRepository) Upsert(ctx context.Context, entry *models.RaceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRaceEntryRepository) ExistsForRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) (bool, error) {
	args := m.Called(ctx, raceDate, venue, raceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockRaceEntryRepository) LatestRaceDate(ctx context.Context, discipline models.Discipline) (time.Time, error) {
	args := m.Called(ctx, discipline)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRaceEntryRepository) GetByRace(ctx context.Context, raceDate time.Time, venue string, raceNumber int) ([]*models.RaceEntry, error) {
	args := m.Called(ctx, raceDate, venue, raceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceEntry), args.Error(1)
}

// fakeTransactor runs the function directly, counting invocations
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func testRatingConfig() *config.RatingConfig {
	return &config.RatingConfig{
		DefaultMu:      1000,
		DefaultSigma:   333.33,
		MinDaysNoDecay: 28,
		MaxDaysDecay:   365,
		MaxDecay:       0.5,
		OddsBeta:       166.5,
		Weights:        rating.DefaultWeightTable(),
	}
}

func newTestIngestionService(t *testing.T, beliefs *MockBeliefRepository, history *MockHistoryRepository, entries *MockRaceEntryRepository) (*IngestionService, *fakeTransactor) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	validator, err := NewCardValidator(log)
	require.NoError(t, err)

	tx := &fakeTransactor{}
	svc := NewIngestionService(
		tx,
		&repository.Repositories{Belief: beliefs, History: history, RaceEntry: entries},
		validator,
		NewCardNormalizer(log),
		testRatingConfig(),
		100,
		log,
	)
	return svc, tx
}

func strPtr(s string) *string { return &s }

func freshBelief(discipline models.Discipline, class models.EntityClass, name string) *models.Belief {
	return &models.Belief{
		Name:       name,
		Discipline: discipline,
		Class:      class,
		Mu:         1000,
		Sigma:      333.33,
	}
}

func TestProcessCardAppliesCompetitiveRace(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, tx := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 19, 0, 0, 0, time.UTC)
	card := &models.Card{
		Source: "cards/2024-02-03.json",
		Races: []models.RaceRecord{{
			Discipline: models.DisciplineTrot,
			RaceDate:   raceDate,
			Venue:      "Solvalla",
			RaceNumber: 5,
			Starters: []models.Starter{
				{HorseName: "Alpha", DriverName: strPtr("Smith"), Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", DriverName: strPtr("Jones"), Finish: models.FinishPosition{Place: 2, Valid: true}},
				{HorseName: "Charlie", Finish: models.FinishPosition{Place: 3, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Solvalla", 5).Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).Return(time.Time{}, models.ErrNotFound)
	entries.On("Upsert", mock.Anything, mock.AnythingOfType("*models.RaceEntry")).Return(nil)

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassHorse, name, 1000.0, 333.33).
			Return(freshBelief(models.DisciplineTrot, models.ClassHorse, name), true, nil)
	}
	for _, name := range []string{"smith", "jones"} {
		beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassDriver, name, 1000.0, 333.33).
			Return(freshBelief(models.DisciplineTrot, models.ClassDriver, name), true, nil)
	}

	updated := make(map[string]models.Belief)
	beliefs.On("Update", mock.Anything, mock.AnythingOfType("*models.Belief")).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*models.Belief)
			updated[string(b.Class)+"/"+b.Name] = *b
		}).
		Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*models.HistoryEntry")).Return(nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ProcessedRaces)
	assert.Equal(t, 5, summary.EntityUpdates)
	assert.Equal(t, 3, summary.UpdatesByClass["horse"])
	assert.Equal(t, 2, summary.UpdatesByClass["driver"])
	assert.Equal(t, 5, summary.EntitiesCreated)
	assert.Equal(t, 1, tx.calls)

	winner := updated["horse/alpha"]
	loser := updated["horse/charlie"]
	assert.Greater(t, winner.Mu, 1000.0)
	assert.Less(t, loser.Mu, 1000.0)
	assert.Less(t, winner.Sigma, 333.33)
	assert.True(t, winner.LastActive.Equal(raceDate))

	winningDriver := updated["driver/smith"]
	losingDriver := updated["driver/jones"]
	assert.Greater(t, winningDriver.Mu, losingDriver.Mu)

	history.AssertNumberOfCalls(t, "Append", 5)
}

func TestProcessCardSkipsDuplicateRace(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, tx := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 19, 0, 0, 0, time.UTC)
	card := &models.Card{
		Races: []models.RaceRecord{{
			Discipline: models.DisciplinePace,
			RaceDate:   raceDate,
			Venue:      "Meadowlands",
			RaceNumber: 2,
			Starters: []models.Starter{
				{HorseName: "Alpha", Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", Finish: models.FinishPosition{Place: 2, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Meadowlands", 2).Return(true, nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 0, summary.ProcessedRaces)
	assert.Equal(t, 0, tx.calls)
	beliefs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProcessCardSkipsOutOfSequenceRace(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, tx := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 19, 0, 0, 0, time.UTC)
	card := &models.Card{
		Races: []models.RaceRecord{{
			Discipline: models.DisciplineTrot,
			RaceDate:   raceDate,
			Venue:      "Vincennes",
			RaceNumber: 1,
			Starters: []models.Starter{
				{HorseName: "Alpha", Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", Finish: models.FinishPosition{Place: 2, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Vincennes", 1).Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).
		Return(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.OutOfOrder)
	assert.Equal(t, 0, summary.SkippedRaces)
	assert.Equal(t, 0, tx.calls)
}

func TestProcessCardQualifierRefreshesWithoutSkillChange(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, _ := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC)
	card := &models.Card{
		Races: []models.RaceRecord{{
			Discipline:  models.DisciplineTrot,
			RaceDate:    raceDate,
			Venue:       "Yonkers",
			RaceNumber:  1,
			IsQualifier: true,
			Starters: []models.Starter{
				{HorseName: "Alpha", DriverName: strPtr("Smith"), Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", Finish: models.FinishPosition{Place: 2, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Yonkers", 1).Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).Return(time.Time{}, models.ErrNotFound)
	entries.On("Upsert", mock.Anything, mock.AnythingOfType("*models.RaceEntry")).Return(nil)

	beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, mock.AnythingOfType("models.EntityClass"), mock.AnythingOfType("string"), 1000.0, 333.33).
		Return(freshBelief(models.DisciplineTrot, models.ClassHorse, "x"), false, nil)
	beliefs.On("Touch", mock.Anything, models.DisciplineTrot, mock.AnythingOfType("models.EntityClass"), mock.AnythingOfType("string"), raceDate, "Yonkers").
		Return(nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Qualifiers)
	assert.Equal(t, 0, summary.EntityUpdates)
	beliefs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	// two horses, one driver
	beliefs.AssertNumberOfCalls(t, "Touch", 3)
}

func TestProcessCardSkipsRaceWithTooFewFinishers(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, tx := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 19, 0, 0, 0, time.UTC)
	card := &models.Card{
		Races: []models.RaceRecord{{
			Discipline: models.DisciplineTrot,
			RaceDate:   raceDate,
			Venue:      "Solvalla",
			RaceNumber: 7,
			Starters: []models.Starter{
				{HorseName: "Alpha", Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", Finish: models.FinishPosition{DNF: true, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Solvalla", 7).Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).Return(time.Time{}, models.ErrNotFound)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedRaces)
	assert.Equal(t, 0, tx.calls)
}

func TestProcessCardAppliesRacesInChronologicalOrder(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, _ := newTestIngestionService(t, beliefs, history, entries)

	day1 := time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 2, 2, 19, 0, 0, 0, time.UTC)
	race := func(date time.Time) models.RaceRecord {
		return models.RaceRecord{
			Discipline: models.DisciplineTrot,
			RaceDate:   date,
			Venue:      "Solvalla",
			RaceNumber: 1,
			Starters: []models.Starter{
				{HorseName: "Alpha", Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", Finish: models.FinishPosition{Place: 2, Valid: true}},
			},
		}
	}
	// Sheet order is newest first; application must be oldest first.
	card := &models.Card{Races: []models.RaceRecord{race(day2), race(day1)}}

	var checkedDates []time.Time
	entries.On("ExistsForRace", mock.Anything, mock.AnythingOfType("time.Time"), "Solvalla", 1).
		Run(func(args mock.Arguments) {
			checkedDates = append(checkedDates, args.Get(1).(time.Time))
		}).
		Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).Return(time.Time{}, models.ErrNotFound)
	entries.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassHorse, mock.AnythingOfType("string"), 1000.0, 333.33).
		Return(freshBelief(models.DisciplineTrot, models.ClassHorse, "x"), false, nil)
	beliefs.On("Update", mock.Anything, mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ProcessedRaces)
	require.Len(t, checkedDates, 2)
	assert.True(t, checkedDates[0].Equal(day1))
	assert.True(t, checkedDates[1].Equal(day2))
}

func TestProcessCardContainsClassComputationFailure(t *testing.T) {
	beliefs := &MockBeliefRepository{}
	history := &MockHistoryRepository{}
	entries := &MockRaceEntryRepository{}
	svc, _ := newTestIngestionService(t, beliefs, history, entries)

	raceDate := time.Date(2024, 2, 3, 19, 0, 0, 0, time.UTC)
	card := &models.Card{
		Races: []models.RaceRecord{{
			Discipline: models.DisciplineTrot,
			RaceDate:   raceDate,
			Venue:      "Solvalla",
			RaceNumber: 3,
			Starters: []models.Starter{
				{HorseName: "Alpha", DriverName: strPtr("Smith"), Finish: models.FinishPosition{Place: 1, Valid: true}},
				{HorseName: "Bravo", DriverName: strPtr("Jones"), Finish: models.FinishPosition{Place: 2, Valid: true}},
			},
		}},
	}

	entries.On("ExistsForRace", mock.Anything, raceDate, "Solvalla", 3).Return(false, nil)
	entries.On("LatestRaceDate", mock.Anything, models.DisciplineTrot).Return(time.Time{}, models.ErrNotFound)
	entries.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	// A corrupt stored sigma makes the horse update numerically invalid.
	corrupt := freshBelief(models.DisciplineTrot, models.ClassHorse, "alpha")
	corrupt.Sigma = -1
	beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassHorse, "alpha", 1000.0, 333.33).
		Return(corrupt, false, nil)
	beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassHorse, "bravo", 1000.0, 333.33).
		Return(freshBelief(models.DisciplineTrot, models.ClassHorse, "bravo"), false, nil)
	for _, name := range []string{"smith", "jones"} {
		beliefs.On("GetOrCreate", mock.Anything, models.DisciplineTrot, models.ClassDriver, name, 1000.0, 333.33).
			Return(freshBelief(models.DisciplineTrot, models.ClassDriver, name), false, nil)
	}

	updated := make(map[string]bool)
	beliefs.On("Update", mock.Anything, mock.AnythingOfType("*models.Belief")).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*models.Belief)
			updated[string(b.Class)+"/"+b.Name] = true
		}).
		Return(nil)
	history.On("Append", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.ProcessCard(context.Background(), card)
	require.NoError(t, err)

	// The race still applies: drivers updated, horses contained.
	assert.Equal(t, 1, summary.ProcessedRaces)
	assert.Equal(t, 2, summary.EntityUpdates)
	assert.Equal(t, []string{"Solvalla R3 horse"}, summary.ClassFailures)
	assert.False(t, updated["horse/alpha"])
	assert.False(t, updated["horse/bravo"])
	assert.True(t, updated["driver/smith"])
	assert.True(t, updated["driver/jones"])
}
