package rating

// Weights is one row of the fusion weight table. Rows are expected to sum
// to 1; the configuration validator enforces it.
type Weights struct {
	Horse   float64 `mapstructure:"horse" json:"horse"`
	Driver  float64 `mapstructure:"driver" json:"driver"`
	Trainer float64 `mapstructure:"trainer" json:"trainer"`
}

// WeightTable selects fusion weights by which of driver/trainer are known
// for a starter. Exactly four cases exist.
type WeightTable struct {
	Full        Weights `mapstructure:"full" json:"full"`
	DriverOnly  Weights `mapstructure:"driver_only" json:"driver_only"`
	TrainerOnly Weights `mapstructure:"trainer_only" json:"trainer_only"`
	HorseOnly   Weights `mapstructure:"horse_only" json:"horse_only"`
}

// DefaultWeightTable returns the canonical table. The full-data row follows
// the rating engine (0.8/0.1/0.1); see DESIGN.md for the choice between the
// two historically observed tables.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		Full:        Weights{Horse: 0.8, Driver: 0.1, Trainer: 0.1},
		DriverOnly:  Weights{Horse: 0.7, Driver: 0.3, Trainer: 0},
		TrainerOnly: Weights{Horse: 0.8, Driver: 0, Trainer: 0.2},
		HorseOnly:   Weights{Horse: 1, Driver: 0, Trainer: 0},
	}
}

// Select returns the weight row for the given availability of partner data.
func (t WeightTable) Select(hasDriver, hasTrainer bool) Weights {
	switch {
	case hasDriver && hasTrainer:
		return t.Full
	case hasDriver:
		return t.DriverOnly
	case hasTrainer:
		return t.TrainerOnly
	default:
		return t.HorseOnly
	}
}

// Fuse combines a horse's belief with its driver's and trainer's (when
// known) into one rating. Both mu and sigma use the same weighted sum, a
// plain weighted average rather than a combination in quadrature. A nil
// driver or trainer carries weight zero and contributes nothing.
func (t WeightTable) Fuse(horse Rating, driver, trainer *Rating) Rating {
	w := t.Select(driver != nil, trainer != nil)

	fused := Rating{
		Mu:    horse.Mu * w.Horse,
		Sigma: horse.Sigma * w.Horse,
	}
	if driver != nil {
		fused.Mu += driver.Mu * w.Driver
		fused.Sigma += driver.Sigma * w.Driver
	}
	if trainer != nil {
		fused.Mu += trainer.Mu * w.Trainer
		fused.Sigma += trainer.Sigma * w.Trainer
	}
	return fused
}
