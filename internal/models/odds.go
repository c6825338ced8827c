package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OddsLine is one starter's row in an odds report, ordered by descending
// win probability. The component mu values are the decayed means that went
// into the fused rating; uncertainty does not affect odds.
type OddsLine struct {
	HorseName      string          `json:"horse_name"`
	DriverName     *string         `json:"driver_name"`
	TrainerName    *string         `json:"trainer_name"`
	WinProbability float64         `json:"win_probability"`
	DecimalOdds    decimal.Decimal `json:"decimal_odds"`
	FusedMu        float64         `json:"fused_mu"`
	FusedSigma     float64         `json:"fused_sigma"`
	HorseMu        float64         `json:"horse_mu"`
	DriverMu       float64         `json:"driver_mu"`
	TrainerMu      float64         `json:"trainer_mu"`
}

// OddsReport is the ranked odds output for one race.
type OddsReport struct {
	Discipline  Discipline `json:"discipline"`
	RaceDate    time.Time  `json:"race_date"`
	Venue       string     `json:"venue"`
	RaceNumber  int        `json:"race_number"`
	GeneratedAt time.Time  `json:"generated_at"`
	Lines       []OddsLine `json:"lines"`
}
