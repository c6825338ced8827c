package rating

import (
	"errors"
	"math"
	"sort"
)

// ErrNoStarters is returned for an odds request over an empty field.
var ErrNoStarters = errors.New("cannot price a race with no starters")

// DefaultOddsBeta is the canonical scale constant of the win-probability
// transform.
const DefaultOddsBeta = 166.5

// Quote is one starter's priced outcome. Index refers back to the caller's
// input order.
type Quote struct {
	Index          int
	WinProbability float64
	DecimalOdds    float64
}

// Odds converts the fused ratings of one race's field into win
// probabilities and decimal odds via a max-shifted softmax over beta.
// Uncertainty is ignored: only the fused mean prices the field. The result
// is sorted by descending probability; ties keep input order.
func Odds(fused []Rating, beta float64) ([]Quote, error) {
	if len(fused) == 0 {
		return nil, ErrNoStarters
	}

	maxMu := fused[0].Mu
	for _, r := range fused[1:] {
		if r.Mu > maxMu {
			maxMu = r.Mu
		}
	}

	scores := make([]float64, len(fused))
	var total float64
	for i, r := range fused {
		scores[i] = math.Exp((r.Mu - maxMu) / beta)
		total += scores[i]
	}
	// Every score is exp(x<=0) in (0,1], so total > 0 whenever the field is
	// non-empty; guarded above.

	quotes := make([]Quote, len(fused))
	for i, score := range scores {
		p := score / total
		odds := math.Inf(1)
		if p > 0 {
			odds = 1 / p
		}
		quotes[i] = Quote{Index: i, WinProbability: p, DecimalOdds: odds}
	}

	sort.SliceStable(quotes, func(a, b int) bool {
		return quotes[a].WinProbability > quotes[b].WinProbability
	})
	return quotes, nil
}
