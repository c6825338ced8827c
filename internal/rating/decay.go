package rating

import "math"

// DecayParams configures the inactivity decay curve. The zero value is not
// usable; construct with DefaultDecayParams and override from configuration.
type DecayParams struct {
	// MinDaysNoDecay is the grace period: at or below this many days of
	// inactivity the stored mean is returned unchanged.
	MinDaysNoDecay int
	// MaxDaysDecay caps the inactivity span; beyond it decay saturates.
	MaxDaysDecay int
	// MaxDecay is the fraction of the mean lost at the saturation point.
	MaxDecay float64
}

// DefaultDecayParams returns the canonical decay configuration: no decay for
// four weeks, logarithmic shrink after that, half the mean gone at one year.
func DefaultDecayParams() DecayParams {
	return DecayParams{
		MinDaysNoDecay: 28,
		MaxDaysDecay:   365,
		MaxDecay:       0.50,
	}
}

// Decay maps a stored mean and an inactivity span to the effective mean used
// at read time. The shrink is multiplicative toward zero, not toward a prior
// mean, so a long-dormant entity's skill magnitude halves at the ceiling.
// Sigma is never decayed. The function is pure: repeated reads with no
// intervening write are idempotent.
func (p DecayParams) Decay(mu float64, daysInactive int) float64 {
	if daysInactive <= p.MinDaysNoDecay {
		return mu
	}
	if daysInactive > p.MaxDaysDecay {
		daysInactive = p.MaxDaysDecay
	}

	x := float64(daysInactive-p.MinDaysNoDecay) + 1
	maxX := float64(p.MaxDaysDecay-p.MinDaysNoDecay) + 1
	// Degenerate configuration: no decay window to interpolate over.
	if maxX <= 1 {
		return mu
	}

	ratio := math.Log(x) / math.Log(maxX)
	return mu * (1 - ratio*p.MaxDecay)
}
