package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuseHorseOnly(t *testing.T) {
	table := DefaultWeightTable()
	horse := Rating{Mu: 1100, Sigma: 250}

	fused := table.Fuse(horse, nil, nil)

	// With neither partner known, fusion is the horse's own belief.
	assert.Equal(t, horse, fused)
}

func TestFuseWeightRows(t *testing.T) {
	table := DefaultWeightTable()
	horse := Rating{Mu: 1000, Sigma: 300}
	driver := Rating{Mu: 1200, Sigma: 200}
	trainer := Rating{Mu: 800, Sigma: 100}

	tests := []struct {
		name      string
		driver    *Rating
		trainer   *Rating
		wantMu    float64
		wantSigma float64
	}{
		{
			name:      "both known",
			driver:    &driver,
			trainer:   &trainer,
			wantMu:    1000*0.8 + 1200*0.1 + 800*0.1,
			wantSigma: 300*0.8 + 200*0.1 + 100*0.1,
		},
		{
			name:      "driver only",
			driver:    &driver,
			wantMu:    1000*0.7 + 1200*0.3,
			wantSigma: 300*0.7 + 200*0.3,
		},
		{
			name:      "trainer only",
			trainer:   &trainer,
			wantMu:    1000*0.8 + 800*0.2,
			wantSigma: 300*0.8 + 100*0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fused := table.Fuse(horse, tt.driver, tt.trainer)
			assert.InDelta(t, tt.wantMu, fused.Mu, 1e-9)
			assert.InDelta(t, tt.wantSigma, fused.Sigma, 1e-9)
		})
	}
}

func TestWeightTableSelect(t *testing.T) {
	table := DefaultWeightTable()

	assert.Equal(t, table.Full, table.Select(true, true))
	assert.Equal(t, table.DriverOnly, table.Select(true, false))
	assert.Equal(t, table.TrainerOnly, table.Select(false, true))
	assert.Equal(t, table.HorseOnly, table.Select(false, false))
}

func TestDefaultWeightRowsSumToOne(t *testing.T) {
	table := DefaultWeightTable()

	for name, w := range map[string]Weights{
		"full":         table.Full,
		"driver_only":  table.DriverOnly,
		"trainer_only": table.TrainerOnly,
		"horse_only":   table.HorseOnly,
	} {
		assert.InDelta(t, 1.0, w.Horse+w.Driver+w.Trainer, 1e-9, name)
	}
}
