// Package logger provides ingestion-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestLogger provides dedicated logging for card ingestion.
type IngestLogger struct {
	*logrus.Entry
}

// NewIngestLogger creates a new ingestion logger.
func NewIngestLogger(baseLogger *logrus.Logger) *IngestLogger {
	return &IngestLogger{
		Entry: baseLogger.WithField("component", "ingest"),
	}
}

// LogRaceProcessed logs a fully applied competitive race.
func (il *IngestLogger) LogRaceProcessed(discipline, venue string, raceNumber int, raceDate time.Time, starters int, durationMs float64) {
	il.WithFields(logrus.Fields{
		"discipline":  discipline,
		"venue":       venue,
		"race_number": raceNumber,
		"race_date":   raceDate.Format("2006-01-02"),
		"starters":    starters,
		"duration_ms": durationMs,
	}).Info("Race processed")
}

// LogRaceSkipped logs a race the engine refused to apply, with the reason.
func (il *IngestLogger) LogRaceSkipped(discipline, venue string, raceNumber int, raceDate time.Time, reason string) {
	il.WithFields(logrus.Fields{
		"discipline":  discipline,
		"venue":       venue,
		"race_number": raceNumber,
		"race_date":   raceDate.Format("2006-01-02"),
		"reason":      reason,
	}).Warn("Race skipped")
}

// LogClassUpdateFailed logs a contained per-class numerical failure.
func (il *IngestLogger) LogClassUpdateFailed(discipline, venue string, raceNumber int, class string, err error) {
	il.WithFields(logrus.Fields{
		"discipline":  discipline,
		"venue":       venue,
		"race_number": raceNumber,
		"class":       class,
	}).WithError(err).Error("Entity class update failed; other classes unaffected")
}

// LogQualifierProcessed logs a recency-only qualifier refresh.
func (il *IngestLogger) LogQualifierProcessed(discipline, venue string, raceNumber int, raceDate time.Time, participants int) {
	il.WithFields(logrus.Fields{
		"discipline":   discipline,
		"venue":        venue,
		"race_number":  raceNumber,
		"race_date":    raceDate.Format("2006-01-02"),
		"participants": participants,
	}).Info("Qualifier processed; activity refreshed only")
}

// LogBatchSummary logs the user-visible result of one card ingestion.
func (il *IngestLogger) LogBatchSummary(source string, processed, skipped, duplicates, failed int, duration time.Duration) {
	il.WithFields(logrus.Fields{
		"source":     source,
		"processed":  processed,
		"skipped":    skipped,
		"duplicates": duplicates,
		"failed":     failed,
		"duration":   duration.String(),
	}).Info("Card ingestion complete")
}
