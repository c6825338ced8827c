// Package rating implements the skill-estimation core: time decay of stored
// means, the Bayesian multi-way update driven by finishing order, adaptive
// fusion of horse/driver/trainer beliefs, and the win-probability transform.
// The package is pure computation; persistence lives in the repository layer.
package rating

// Rating is a Gaussian-like skill estimate: a mean and an uncertainty.
type Rating struct {
	Mu    float64
	Sigma float64
}
