package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestAuditLoggerBeliefUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogBeliefUpdate(
		"trot", "horse", "lucky strike",
		"1",
		1000.0, 1142.7, 333.33, 301.2,
		time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC),
		"Yonkers Raceway",
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "lucky strike", logEntry["name"])
	assert.Equal(t, "2024-02-03", logEntry["race_date"])
	assert.Equal(t, 1142.7, logEntry["new_mu"])
}

func TestIngestLoggerRaceSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogRaceSkipped(
		"pace", "Meadowlands", 4,
		time.Date(2024, 2, 3, 19, 15, 0, 0, time.UTC),
		"fewer than 2 valid finishers",
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ingest", logEntry["component"])
	assert.Equal(t, "fewer than 2 valid finishers", logEntry["reason"])
	assert.Equal(t, float64(4), logEntry["race_number"])
}

func TestIngestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogBatchSummary("cards/2024-02-03.json", 10, 1, 2, 0, 1500*time.Millisecond)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.Equal(t, float64(10), logEntry["processed"])
}
