// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for belief mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBeliefUpdate logs one entity's belief change after a competitive race.
func (al *AuditLogger) LogBeliefUpdate(discipline, class, name string, finish string, oldMu, newMu, oldSigma, newSigma float64, raceDate time.Time, venue string) {
	al.WithFields(logrus.Fields{
		"discipline": discipline,
		"class":      class,
		"name":       name,
		"finish":     finish,
		"old_mu":     oldMu,
		"new_mu":     newMu,
		"old_sigma":  oldSigma,
		"new_sigma":  newSigma,
		"race_date":  raceDate.Format("2006-01-02"),
		"venue":      venue,
	}).Info("Belief updated")
}

// LogEntityCreated logs the lazy creation of a new entity with the default
// prior.
func (al *AuditLogger) LogEntityCreated(discipline, class, name string, mu, sigma float64) {
	al.WithFields(logrus.Fields{
		"discipline": discipline,
		"class":      class,
		"name":       name,
		"mu":         mu,
		"sigma":      sigma,
	}).Debug("Entity created with default belief")
}

// LogActivityRefresh logs a qualifier-only recency refresh.
func (al *AuditLogger) LogActivityRefresh(discipline, class, name, venue string, raceDate time.Time) {
	al.WithFields(logrus.Fields{
		"discipline": discipline,
		"class":      class,
		"name":       name,
		"venue":      venue,
		"race_date":  raceDate.Format("2006-01-02"),
	}).Debug("Activity refreshed without belief change")
}
