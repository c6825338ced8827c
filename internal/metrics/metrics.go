// Package metrics provides the centralized Prometheus metrics registry for
// the rating engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CardsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "cards_ingested_total",
		Help:      "Total number of result cards ingested",
	})
	RacesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "races_processed_total",
		Help:      "Total number of competitive races applied, by discipline",
	}, []string{"discipline"})
	RacesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "races_skipped_total",
		Help:      "Total number of races not applied, by reason",
	}, []string{"reason"})
	QualifiersProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "qualifiers_processed_total",
		Help:      "Total number of qualifier races refreshed, by discipline",
	}, []string{"discipline"})
	EntityUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "entity_updates_total",
		Help:      "Total number of belief updates, by entity class",
	}, []string{"class"})
	EntitiesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "entities_created_total",
		Help:      "Total number of entities created with the default prior, by entity class",
	}, []string{"class"})
	ClassUpdateFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "class_update_failures_total",
		Help:      "Total number of contained per-class update failures, by entity class",
	}, []string{"class"})
	OddsReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stride_score",
		Name:      "odds_reports_total",
		Help:      "Total number of win odds reports generated",
	})
)

// Gauge metrics
var (
	LatestRaceDate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stride_score",
		Name:      "latest_race_date_seconds",
		Help:      "Unix timestamp of the newest applied race, by discipline",
	}, []string{"discipline"})
	PendingCards = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stride_score",
		Name:      "pending_cards",
		Help:      "Number of card files waiting in the input directory",
	})
)

// Histogram metrics
var (
	RaceProcessingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stride_score",
		Name:      "race_processing_duration_seconds",
		Help:      "Duration of single-race rating updates in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CardIngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stride_score",
		Name:      "card_ingestion_duration_seconds",
		Help:      "Duration of full card ingestion in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CardsIngestedTotal)
		registry.MustRegister(RacesProcessedTotal)
		registry.MustRegister(RacesSkippedTotal)
		registry.MustRegister(QualifiersProcessedTotal)
		registry.MustRegister(EntityUpdatesTotal)
		registry.MustRegister(EntitiesCreatedTotal)
		registry.MustRegister(ClassUpdateFailuresTotal)
		registry.MustRegister(OddsReportsTotal)

		registry.MustRegister(LatestRaceDate)
		registry.MustRegister(PendingCards)

		registry.MustRegister(RaceProcessingDuration)
		registry.MustRegister(CardIngestionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCardIngested records a completed card ingestion.
func RecordCardIngested(durationSeconds float64) {
	CardsIngestedTotal.Inc()
	CardIngestionDuration.Observe(durationSeconds)
}

// RecordRaceProcessed records an applied competitive race.
func RecordRaceProcessed(discipline string, durationSeconds float64) {
	RacesProcessedTotal.WithLabelValues(discipline).Inc()
	RaceProcessingDuration.Observe(durationSeconds)
}

// RecordRaceSkipped records a race the engine refused to apply.
func RecordRaceSkipped(reason string) {
	RacesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordQualifierProcessed records a qualifier recency refresh.
func RecordQualifierProcessed(discipline string) {
	QualifiersProcessedTotal.WithLabelValues(discipline).Inc()
}

// RecordEntityUpdate records one belief update.
func RecordEntityUpdate(class string) {
	EntityUpdatesTotal.WithLabelValues(class).Inc()
}

// RecordEntityCreated records one lazy entity creation.
func RecordEntityCreated(class string) {
	EntitiesCreatedTotal.WithLabelValues(class).Inc()
}

// RecordClassUpdateFailure records a contained per-class failure.
func RecordClassUpdateFailure(class string) {
	ClassUpdateFailuresTotal.WithLabelValues(class).Inc()
}

// RecordOddsReport records a generated win odds report.
func RecordOddsReport() {
	OddsReportsTotal.Inc()
}

// UpdateLatestRaceDate updates the newest applied race date gauge.
func UpdateLatestRaceDate(discipline string, unixSeconds float64) {
	LatestRaceDate.WithLabelValues(discipline).Set(unixSeconds)
}

// UpdatePendingCards updates the input backlog gauge.
func UpdatePendingCards(count float64) {
	PendingCards.Set(count)
}
