package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stride-score/internal/config"
	"github.com/yourusername/stride-score/internal/datasource"
	"github.com/yourusername/stride-score/internal/logger"
	"github.com/yourusername/stride-score/internal/metrics"
	"github.com/yourusername/stride-score/internal/models"
	"github.com/yourusername/stride-score/internal/rating"
	"github.com/yourusername/stride-score/internal/repository"
)

// Transactor runs a function inside one database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IngestionService applies result cards to the belief store. Each race is
// one transaction: either every surviving update for that race commits, or
// none do.
type IngestionService struct {
	tx         Transactor
	beliefs    repository.BeliefRepository
	history    repository.HistoryRepository
	entries    repository.RaceEntryRepository
	validator  *CardValidator
	normalizer *CardNormalizer
	env        rating.Env
	decay      rating.DecayParams
	batchSize  int
	ingestLog  *logger.IngestLogger
	auditLog   *logger.AuditLogger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	tx Transactor,
	repos *repository.Repositories,
	validator *CardValidator,
	normalizer *CardNormalizer,
	ratingCfg *config.RatingConfig,
	batchSize int,
	log *logrus.Logger,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &IngestionService{
		tx:         tx,
		beliefs:    repos.Belief,
		history:    repos.History,
		entries:    repos.RaceEntry,
		validator:  validator,
		normalizer: normalizer,
		env:        ratingCfg.Env(),
		decay:      ratingCfg.DecayParams(),
		batchSize:  batchSize,
		ingestLog:  logger.NewIngestLogger(log),
		auditLog:   logger.NewAuditLogger(log),
	}
}

// ProcessPending ingests cards waiting at the source, oldest first, up to
// the batch size per sweep, archiving each consumed card.
func (s *IngestionService) ProcessPending(ctx context.Context, source datasource.CardSource) ([]*IngestionSummary, error) {
	ids, err := source.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending cards: %w", err)
	}
	metrics.UpdatePendingCards(float64(len(ids)))
	if len(ids) > s.batchSize {
		ids = ids[:s.batchSize]
	}

	var summaries []*IngestionSummary
	for _, id := range ids {
		card, err := source.Fetch(ctx, id)
		if err != nil {
			s.ingestLog.WithError(err).WithField("card", id).Error("Failed to fetch card")
			continue
		}

		summary, err := s.ProcessCard(ctx, card)
		if err != nil {
			s.ingestLog.WithError(err).WithField("card", id).Error("Failed to process card")
			continue
		}
		summaries = append(summaries, summary)

		if err := source.Archive(ctx, id); err != nil {
			s.ingestLog.WithError(err).WithField("card", id).Error("Failed to archive card")
		}
	}

	return summaries, nil
}

// ProcessCard applies one result card. Races are normalized, sorted into
// chronological order, and applied independently: one bad race never blocks
// the rest of the card.
func (s *IngestionService) ProcessCard(ctx context.Context, card *models.Card) (*IngestionSummary, error) {
	summary := NewIngestionSummary(card.Source)
	summary.TotalRaces = len(card.Races)

	races := make([]models.RaceRecord, 0, len(card.Races))
	for i := range card.Races {
		race := card.Races[i]
		if err := s.normalizer.NormalizeRace(&race); err != nil {
			summary.RecordSkipped()
			metrics.RecordRaceSkipped("unknown_discipline")
			s.ingestLog.LogRaceSkipped(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, err.Error())
			continue
		}
		races = append(races, race)
	}

	// Cards carry races in sheet order; beliefs must advance in time order.
	sort.SliceStable(races, func(i, j int) bool {
		if !races[i].RaceDate.Equal(races[j].RaceDate) {
			return races[i].RaceDate.Before(races[j].RaceDate)
		}
		if races[i].Venue != races[j].Venue {
			return races[i].Venue < races[j].Venue
		}
		return races[i].RaceNumber < races[j].RaceNumber
	})

	for i := range races {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("card processing interrupted: %w", err)
		}
		s.processRace(ctx, &races[i], summary)
	}

	summary.Finish()
	metrics.RecordCardIngested(summary.Duration.Seconds())
	s.ingestLog.LogBatchSummary(
		card.Source,
		summary.ProcessedRaces+summary.Qualifiers,
		summary.SkippedRaces+summary.OutOfOrder,
		summary.Duplicates,
		summary.FailedRaces,
		summary.Duration,
	)

	return summary, nil
}

func (s *IngestionService) processRace(ctx context.Context, race *models.RaceRecord, summary *IngestionSummary) {
	if errs := s.validator.ValidateRace(race); len(errs) > 0 {
		summary.RecordSkipped()
		metrics.RecordRaceSkipped("invalid")
		s.ingestLog.LogRaceSkipped(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, strings.Join(errs, "; "))
		return
	}

	exists, err := s.entries.ExistsForRace(ctx, race.RaceDate, race.Venue, race.RaceNumber)
	if err != nil {
		summary.RecordFailed()
		s.ingestLog.WithError(err).Error("Failed to check for duplicate race")
		return
	}
	if exists {
		summary.RecordDuplicate()
		metrics.RecordRaceSkipped("duplicate")
		s.ingestLog.LogRaceSkipped(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, "already applied")
		return
	}

	latest, err := s.entries.LatestRaceDate(ctx, race.Discipline)
	if err != nil && err != models.ErrNotFound {
		summary.RecordFailed()
		s.ingestLog.WithError(err).Error("Failed to read latest applied race date")
		return
	}
	if err == nil && race.RaceDate.Before(latest) {
		summary.RecordOutOfOrder()
		metrics.RecordRaceSkipped("out_of_sequence")
		s.ingestLog.LogRaceSkipped(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate,
			fmt.Sprintf("older than latest applied race %s", latest.Format("2006-01-02")))
		return
	}

	if race.IsQualifier {
		s.processQualifier(ctx, race, summary)
		return
	}
	s.processCompetitive(ctx, race, summary)
}

// processQualifier refreshes activity for every participant without touching
// skill. Qualifiers prove an entity is racing, not how well.
func (s *IngestionService) processQualifier(ctx context.Context, race *models.RaceRecord, summary *IngestionSummary) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range race.Starters {
			if err := s.entries.Upsert(ctx, raceEntryFor(race, &race.Starters[i])); err != nil {
				return err
			}
			if err := s.touchStarter(ctx, race, &race.Starters[i], summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		summary.RecordFailed()
		s.ingestLog.WithError(err).Error("Failed to apply qualifier")
		return
	}

	summary.RecordQualifier()
	metrics.RecordQualifierProcessed(string(race.Discipline))
	s.ingestLog.LogQualifierProcessed(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, len(race.Starters))
}

func (s *IngestionService) processCompetitive(ctx context.Context, race *models.RaceRecord, summary *IngestionSummary) {
	start := time.Now()

	ranked := RankedStarters(race)
	if len(ranked) < 2 {
		summary.RecordSkipped()
		metrics.RecordRaceSkipped("too_few_finishers")
		s.ingestLog.LogRaceSkipped(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, "fewer than 2 valid finishers")
		return
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range race.Starters {
			if err := s.entries.Upsert(ctx, raceEntryFor(race, &race.Starters[i])); err != nil {
				return err
			}
		}

		// The three classes update independently: a numerical failure in
		// one is logged and contained, the others still apply.
		if err := s.updateClass(ctx, race, models.ClassHorse, horseEntrants(ranked), summary); err != nil {
			return err
		}
		if err := s.updateClass(ctx, race, models.ClassDriver, partnerEntrants(ranked, func(st models.Starter) *string { return st.DriverName }), summary); err != nil {
			return err
		}
		if err := s.updateClass(ctx, race, models.ClassTrainer, partnerEntrants(ranked, func(st models.Starter) *string { return st.TrainerName }), summary); err != nil {
			return err
		}

		// Did-not-finish starters were at the race even though they carry
		// no ranking signal.
		for i := range race.Starters {
			if race.Starters[i].Finish.IsRanked() {
				continue
			}
			if err := s.touchStarter(ctx, race, &race.Starters[i], summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		summary.RecordFailed()
		s.ingestLog.WithError(err).Error("Failed to apply race")
		return
	}

	summary.RecordProcessed()
	metrics.RecordRaceProcessed(string(race.Discipline), time.Since(start).Seconds())
	metrics.UpdateLatestRaceDate(string(race.Discipline), float64(race.RaceDate.Unix()))
	s.ingestLog.LogRaceProcessed(string(race.Discipline), race.Venue, race.RaceNumber, race.RaceDate, len(race.Starters), float64(time.Since(start).Milliseconds()))
}

// classEntrant is one participant of one entity class in one race
type classEntrant struct {
	name      string
	rank      int
	finish    string
	horseName *string
}

func horseEntrants(ranked []models.Starter) []classEntrant {
	entrants := make([]classEntrant, len(ranked))
	for i, st := range ranked {
		entrants[i] = classEntrant{
			name:   st.HorseName,
			rank:   st.Finish.Place,
			finish: st.Finish.String(),
		}
	}
	return entrants
}

// partnerEntrants builds the driver or trainer field. A partner listed on
// several horses in the same race enters once, credited with the best of
// those finishes.
func partnerEntrants(ranked []models.Starter, pick func(models.Starter) *string) []classEntrant {
	index := make(map[string]int)
	var entrants []classEntrant
	for _, st := range ranked {
		name := pick(st)
		if name == nil {
			continue
		}
		horse := st.HorseName
		if i, ok := index[*name]; ok {
			if st.Finish.Place < entrants[i].rank {
				entrants[i].rank = st.Finish.Place
				entrants[i].finish = st.Finish.String()
				entrants[i].horseName = &horse
			}
			continue
		}
		index[*name] = len(entrants)
		entrants = append(entrants, classEntrant{
			name:      *name,
			rank:      st.Finish.Place,
			finish:    st.Finish.String(),
			horseName: &horse,
		})
	}
	return entrants
}

// updateClass runs the Bayesian rank update for one entity class. Load and
// persistence errors abort the race transaction; a numerical failure of the
// update itself is contained to this class and persists nothing.
func (s *IngestionService) updateClass(ctx context.Context, race *models.RaceRecord, class models.EntityClass, entrants []classEntrant, summary *IngestionSummary) error {
	if len(entrants) < 2 {
		return nil
	}

	beliefs := make([]*models.Belief, len(entrants))
	players := make([]rating.Rating, len(entrants))
	ranks := make([]int, len(entrants))
	for i, e := range entrants {
		b, _, err := s.loadBelief(ctx, race.Discipline, class, e.name, summary)
		if err != nil {
			return err
		}
		beliefs[i] = b
		players[i] = rating.Rating{
			Mu:    s.decay.Decay(b.Mu, b.DaysInactive(race.RaceDate)),
			Sigma: b.Sigma,
		}
		ranks[i] = e.rank
	}

	updated, err := s.env.Rate(players, ranks)
	if err != nil {
		summary.RecordClassFailure(race.Venue, race.RaceNumber, string(class))
		s.ingestLog.LogClassUpdateFailed(string(race.Discipline), race.Venue, race.RaceNumber, string(class), err)
		metrics.RecordClassUpdateFailure(string(class))
		return nil
	}

	venue := race.Venue
	for i, b := range beliefs {
		oldMu, oldSigma := b.Mu, b.Sigma
		b.Mu = updated[i].Mu
		b.Sigma = updated[i].Sigma
		b.LastActive = race.RaceDate
		b.LastVenue = &venue

		if err := s.beliefs.Update(ctx, b); err != nil {
			return fmt.Errorf("failed to persist %s belief: %w", class, err)
		}
		if err := s.history.Append(ctx, &models.HistoryEntry{
			Name:           b.Name,
			Discipline:     b.Discipline,
			Class:          b.Class,
			Mu:             b.Mu,
			Sigma:          b.Sigma,
			RaceDate:       race.RaceDate,
			Venue:          race.Venue,
			FinishPosition: entrants[i].finish,
			RaceClass:      race.RaceClass,
			HorseName:      entrants[i].horseName,
		}); err != nil {
			return fmt.Errorf("failed to record %s history: %w", class, err)
		}

		s.auditLog.LogBeliefUpdate(string(b.Discipline), string(class), b.Name, entrants[i].finish, oldMu, b.Mu, oldSigma, b.Sigma, race.RaceDate, race.Venue)
		summary.RecordEntityUpdate(string(class))
		metrics.RecordEntityUpdate(string(class))
	}

	return nil
}

func (s *IngestionService) loadBelief(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, summary *IngestionSummary) (*models.Belief, bool, error) {
	b, created, err := s.beliefs.GetOrCreate(ctx, discipline, class, name, s.env.Mu, s.env.Sigma)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s belief for %q: %w", class, name, err)
	}
	if created {
		summary.RecordEntityCreated()
		metrics.RecordEntityCreated(string(class))
		s.auditLog.LogEntityCreated(string(discipline), string(class), name, b.Mu, b.Sigma)
	}
	return b, created, nil
}

func (s *IngestionService) touchStarter(ctx context.Context, race *models.RaceRecord, starter *models.Starter, summary *IngestionSummary) error {
	participants := []struct {
		class models.EntityClass
		name  *string
	}{
		{models.ClassHorse, &starter.HorseName},
		{models.ClassDriver, starter.DriverName},
		{models.ClassTrainer, starter.TrainerName},
	}

	for _, p := range participants {
		if p.name == nil || *p.name == "" {
			continue
		}
		if _, _, err := s.loadBelief(ctx, race.Discipline, p.class, *p.name, summary); err != nil {
			return err
		}
		if err := s.beliefs.Touch(ctx, race.Discipline, p.class, *p.name, race.RaceDate, race.Venue); err != nil {
			return fmt.Errorf("failed to refresh %s activity for %q: %w", p.class, *p.name, err)
		}
		s.auditLog.LogActivityRefresh(string(race.Discipline), string(p.class), *p.name, race.Venue, race.RaceDate)
	}

	return nil
}

func raceEntryFor(race *models.RaceRecord, starter *models.Starter) *models.RaceEntry {
	return &models.RaceEntry{
		RaceDate:       race.RaceDate,
		Venue:          race.Venue,
		RaceNumber:     race.RaceNumber,
		HorseName:      starter.HorseName,
		DriverName:     starter.DriverName,
		TrainerName:    starter.TrainerName,
		FinishPosition: starter.Finish.String(),
		RaceClass:      race.RaceClass,
		Discipline:     race.Discipline,
		IsQualifier:    race.IsQualifier,
	}
}
