package rating

import (
	"errors"
	"fmt"
	"math"
)

// Skill update errors.
var (
	ErrTooFewPlayers = errors.New("rank update needs at least two players")
	ErrRankMismatch  = errors.New("players and ranks must have equal length")
)

// Env holds the parameters of the skill model. Variables follow the
// conventions of Weng & Lin, "A Bayesian Approximation Method for Online
// Ranking" (JMLR 2011), Bradley-Terry full-pair variant:
//   - Mu, Sigma: prior mean and deviation of a fresh player.
//   - Beta: performance noise per game.
//   - Kappa: floor keeping the posterior variance strictly positive.
type Env struct {
	Mu    float64
	Sigma float64
	Beta  float64
	Kappa float64
}

// NewEnv returns an environment with the canonical prior (1000, 333.33),
// beta at half the prior deviation, and the paper's variance floor.
func NewEnv(mu, sigma float64) Env {
	return Env{
		Mu:    mu,
		Sigma: sigma,
		Beta:  sigma / 2,
		Kappa: 0.0001,
	}
}

// NewRating returns the prior belief assigned to a freshly sighted entity.
func (e Env) NewRating() Rating {
	return Rating{Mu: e.Mu, Sigma: e.Sigma}
}

// Rate runs one Bayesian multi-way update over a single race's participants
// of one entity class. ranks[i] is player i's finishing position (1 = win);
// equal ranks are ties and are scored as draws. The returned slice is in
// input order. No player is partially updated: any validation or numerical
// failure returns an error and the input beliefs stand.
func (e Env) Rate(players []Rating, ranks []int) ([]Rating, error) {
	if len(players) != len(ranks) {
		return nil, ErrRankMismatch
	}
	if len(players) < 2 {
		return nil, ErrTooFewPlayers
	}
	for i, p := range players {
		if p.Sigma <= 0 {
			return nil, fmt.Errorf("player %d has non-positive sigma %v", i, p.Sigma)
		}
	}

	twoBeta2 := 2 * e.Beta * e.Beta
	updated := make([]Rating, len(players))

	for i, pi := range players {
		si2 := pi.Sigma * pi.Sigma
		var omega, delta float64

		for q, pq := range players {
			if q == i {
				continue
			}
			sq2 := pq.Sigma * pq.Sigma
			ciq2 := si2 + sq2 + twoBeta2
			ciq := math.Sqrt(ciq2)

			// Expected probability that i beats q under Bradley-Terry.
			piq := 1 / (1 + math.Exp((pq.Mu-pi.Mu)/ciq))

			var score float64
			switch {
			case ranks[i] < ranks[q]:
				score = 1
			case ranks[i] == ranks[q]:
				score = 0.5
			default:
				score = 0
			}

			gamma := pi.Sigma / ciq
			omega += (si2 / ciq) * (score - piq)
			delta += gamma * (si2 / ciq2) * piq * (1 - piq)
		}

		mu := pi.Mu + omega
		sigma := pi.Sigma * math.Sqrt(math.Max(1-delta, e.Kappa))
		if math.IsNaN(mu) || math.IsInf(mu, 0) || math.IsNaN(sigma) || sigma <= 0 {
			return nil, fmt.Errorf("rank update diverged for player %d (mu=%v sigma=%v)", i, mu, sigma)
		}
		updated[i] = Rating{Mu: mu, Sigma: sigma}
	}

	return updated, nil
}
