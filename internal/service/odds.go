package service

import (
	"context"
	"fmt"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stride-score/internal/config"
	"github.com/yourusername/stride-score/internal/metrics"
	"github.com/yourusername/stride-score/internal/models"
	"github.com/yourusername/stride-score/internal/rating"
	"github.com/yourusername/stride-score/internal/repository"
)

// oddsCap bounds decimal odds when the softmax probability underflows.
var oddsCap = decimal.NewFromInt(10000)

// OddsService prices upcoming races from the current belief store. Reads go
// through a short TTL cache so pricing a full meeting does not hammer the
// database for the same drivers and trainers.
type OddsService struct {
	beliefs    repository.BeliefRepository
	normalizer *CardNormalizer
	cache      *gocache.Cache
	table      rating.WeightTable
	decay      rating.DecayParams
	env        rating.Env
	beta       float64
	logger     *logrus.Entry
}

// NewOddsService creates a new odds service
func NewOddsService(
	beliefs repository.BeliefRepository,
	normalizer *CardNormalizer,
	ratingCfg *config.RatingConfig,
	cacheTTL time.Duration,
	log *logrus.Logger,
) *OddsService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &OddsService{
		beliefs:    beliefs,
		normalizer: normalizer,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		table:      ratingCfg.Weights,
		decay:      ratingCfg.DecayParams(),
		env:        ratingCfg.Env(),
		beta:       ratingCfg.OddsBeta,
		logger:     log.WithField("component", "odds"),
	}
}

// QuoteRace prices one upcoming race as of its race date. Entities never
// seen before are priced at the default prior without being created; only
// ingestion writes beliefs.
func (s *OddsService) QuoteRace(ctx context.Context, race *models.RaceRecord) (*models.OddsReport, error) {
	if err := s.normalizer.NormalizeRace(race); err != nil {
		return nil, err
	}
	if len(race.Starters) == 0 {
		return nil, rating.ErrNoStarters
	}

	fused := make([]rating.Rating, len(race.Starters))
	horseMus := make([]float64, len(race.Starters))
	driverMus := make([]float64, len(race.Starters))
	trainerMus := make([]float64, len(race.Starters))

	for i, starter := range race.Starters {
		horse, err := s.lookupRating(ctx, race.Discipline, models.ClassHorse, starter.HorseName, race.RaceDate)
		if err != nil {
			return nil, err
		}
		horseMus[i] = horse.Mu

		var driver, trainer *rating.Rating
		if starter.DriverName != nil {
			r, err := s.lookupRating(ctx, race.Discipline, models.ClassDriver, *starter.DriverName, race.RaceDate)
			if err != nil {
				return nil, err
			}
			driver = &r
			driverMus[i] = r.Mu
		}
		if starter.TrainerName != nil {
			r, err := s.lookupRating(ctx, race.Discipline, models.ClassTrainer, *starter.TrainerName, race.RaceDate)
			if err != nil {
				return nil, err
			}
			trainer = &r
			trainerMus[i] = r.Mu
		}

		fused[i] = s.table.Fuse(horse, driver, trainer)
	}

	quotes, err := rating.Odds(fused, s.beta)
	if err != nil {
		return nil, err
	}

	report := &models.OddsReport{
		Discipline:  race.Discipline,
		RaceDate:    race.RaceDate,
		Venue:       race.Venue,
		RaceNumber:  race.RaceNumber,
		GeneratedAt: time.Now().UTC(),
		Lines:       make([]models.OddsLine, len(quotes)),
	}
	for i, q := range quotes {
		starter := race.Starters[q.Index]
		report.Lines[i] = models.OddsLine{
			HorseName:      starter.HorseName,
			DriverName:     starter.DriverName,
			TrainerName:    starter.TrainerName,
			WinProbability: q.WinProbability,
			DecimalOdds:    decimalOdds(q.DecimalOdds),
			FusedMu:        fused[q.Index].Mu,
			FusedSigma:     fused[q.Index].Sigma,
			HorseMu:        horseMus[q.Index],
			DriverMu:       driverMus[q.Index],
			TrainerMu:      trainerMus[q.Index],
		}
	}

	metrics.RecordOddsReport()
	s.logger.WithFields(logrus.Fields{
		"discipline":  race.Discipline,
		"venue":       race.Venue,
		"race_number": race.RaceNumber,
		"starters":    len(report.Lines),
	}).Info("Odds report generated")

	return report, nil
}

// lookupRating reads one belief through the cache and applies inactivity
// decay as of the race date. The decayed value is never written back.
func (s *OddsService) lookupRating(ctx context.Context, discipline models.Discipline, class models.EntityClass, name string, asOf time.Time) (rating.Rating, error) {
	key := string(discipline) + "|" + string(class) + "|" + name

	var belief *models.Belief
	if cached, ok := s.cache.Get(key); ok {
		belief = cached.(*models.Belief)
	} else {
		b, err := s.beliefs.GetByName(ctx, discipline, class, name)
		if err == models.ErrNotFound {
			return s.env.NewRating(), nil
		}
		if err != nil {
			return rating.Rating{}, fmt.Errorf("failed to read %s belief for %q: %w", class, name, err)
		}
		belief = b
		s.cache.Set(key, belief, gocache.DefaultExpiration)
	}

	return rating.Rating{
		Mu:    s.decay.Decay(belief.Mu, belief.DaysInactive(asOf)),
		Sigma: belief.Sigma,
	}, nil
}

func decimalOdds(odds float64) decimal.Decimal {
	if math.IsInf(odds, 1) || odds > 10000 {
		return oddsCap
	}
	return decimal.NewFromFloat(odds).Round(2)
}
