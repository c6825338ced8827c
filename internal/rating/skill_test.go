package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() Env {
	return NewEnv(1000, 333.33)
}

func TestRateTwoPlayerRace(t *testing.T) {
	env := testEnv()
	players := []Rating{env.NewRating(), env.NewRating()}

	updated, err := env.Rate(players, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Greater(t, updated[0].Mu, players[0].Mu, "winner mean must strictly increase")
	assert.Less(t, updated[1].Mu, players[1].Mu, "loser mean must strictly decrease")
	assert.Less(t, updated[0].Sigma, players[0].Sigma, "uncertainty shrinks after evidence")
	assert.Positive(t, updated[1].Sigma)
}

func TestRateUpsetMovesMoreThanExpectedResult(t *testing.T) {
	env := testEnv()
	favourite := Rating{Mu: 1400, Sigma: 200}
	outsider := Rating{Mu: 800, Sigma: 200}

	expected, err := env.Rate([]Rating{favourite, outsider}, []int{1, 2})
	require.NoError(t, err)
	upset, err := env.Rate([]Rating{favourite, outsider}, []int{2, 1})
	require.NoError(t, err)

	expectedGain := expected[0].Mu - favourite.Mu
	upsetLoss := favourite.Mu - upset[0].Mu
	assert.Greater(t, upsetLoss, expectedGain,
		"losing as favourite should cost more than winning gains")
}

func TestRateFieldOrdering(t *testing.T) {
	env := testEnv()
	field := make([]Rating, 8)
	ranks := make([]int, 8)
	for i := range field {
		field[i] = env.NewRating()
		ranks[i] = i + 1
	}

	updated, err := env.Rate(field, ranks)
	require.NoError(t, err)

	// Identical priors with strict finishing order: posterior means must
	// come out strictly ordered the same way.
	for i := 1; i < len(updated); i++ {
		assert.Greater(t, updated[i-1].Mu, updated[i].Mu, "position %d", i)
	}
}

func TestRateTies(t *testing.T) {
	env := testEnv()
	players := []Rating{env.NewRating(), env.NewRating(), env.NewRating()}

	updated, err := env.Rate(players, []int{1, 2, 2})
	require.NoError(t, err)

	// The two dead-heated players had identical priors and identical
	// evidence; their posteriors stay identical.
	assert.InDelta(t, updated[1].Mu, updated[2].Mu, 1e-9)
	assert.InDelta(t, updated[1].Sigma, updated[2].Sigma, 1e-9)
	assert.Greater(t, updated[0].Mu, updated[1].Mu)
}

func TestRateAllTiedIsNeutral(t *testing.T) {
	env := testEnv()
	players := []Rating{env.NewRating(), env.NewRating()}

	updated, err := env.Rate(players, []int{1, 1})
	require.NoError(t, err)

	// A pure draw between equal priors moves no mean.
	assert.InDelta(t, players[0].Mu, updated[0].Mu, 1e-9)
	assert.InDelta(t, players[1].Mu, updated[1].Mu, 1e-9)
}

func TestRateInputValidation(t *testing.T) {
	env := testEnv()

	_, err := env.Rate([]Rating{env.NewRating()}, []int{1})
	assert.ErrorIs(t, err, ErrTooFewPlayers)

	_, err = env.Rate([]Rating{env.NewRating(), env.NewRating()}, []int{1})
	assert.ErrorIs(t, err, ErrRankMismatch)

	_, err = env.Rate([]Rating{{Mu: 1000, Sigma: 0}, env.NewRating()}, []int{1, 2})
	assert.Error(t, err)
}

func TestRateDoesNotMutateInput(t *testing.T) {
	env := testEnv()
	players := []Rating{env.NewRating(), env.NewRating()}
	before := make([]Rating, len(players))
	copy(before, players)

	_, err := env.Rate(players, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, before, players)
}
