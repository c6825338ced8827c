package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionSummary tracks statistics about one card ingestion
type IngestionSummary struct {
	mu              sync.RWMutex
	Source          string
	StartTime       time.Time
	Duration        time.Duration
	TotalRaces      int
	ProcessedRaces  int
	Qualifiers      int
	Duplicates      int
	OutOfOrder      int
	SkippedRaces    int
	FailedRaces     int
	EntityUpdates   int
	EntitiesCreated int
	// UpdatesByClass breaks EntityUpdates down per entity class.
	UpdatesByClass map[string]int
	// ClassFailures lists race/class pairs whose skill update was contained,
	// as "venue R<number> <class>".
	ClassFailures []string
}

// NewIngestionSummary creates a new summary tracker
func NewIngestionSummary(source string) *IngestionSummary {
	return &IngestionSummary{
		Source:         source,
		StartTime:      time.Now(),
		UpdatesByClass: make(map[string]int),
	}
}

// RecordProcessed increments the applied competitive race count
func (s *IngestionSummary) RecordProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProcessedRaces++
}

// RecordQualifier increments the qualifier count
func (s *IngestionSummary) RecordQualifier() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Qualifiers++
}

// RecordDuplicate increments the duplicate count
func (s *IngestionSummary) RecordDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Duplicates++
}

// RecordOutOfOrder increments the out-of-sequence race count
func (s *IngestionSummary) RecordOutOfOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OutOfOrder++
}

// RecordSkipped increments the skipped race count
func (s *IngestionSummary) RecordSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedRaces++
}

// RecordFailed increments the failed race count
func (s *IngestionSummary) RecordFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedRaces++
}

// RecordEntityUpdate increments the belief update count for one class
func (s *IngestionSummary) RecordEntityUpdate(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EntityUpdates++
	s.UpdatesByClass[class]++
}

// RecordClassFailure notes a contained per-class update failure
func (s *IngestionSummary) RecordClassFailure(venue string, raceNumber int, class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClassFailures = append(s.ClassFailures, fmt.Sprintf("%s R%d %s", venue, raceNumber, class))
}

// RecordEntityCreated increments the lazy creation count
func (s *IngestionSummary) RecordEntityCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EntitiesCreated++
}

// Finish stamps the total duration
func (s *IngestionSummary) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Duration = time.Since(s.StartTime)
}

// String returns a formatted string representation of the summary
func (s *IngestionSummary) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionSummary{Source=%s, Total=%d, Processed=%d, Qualifiers=%d, Duplicates=%d, OutOfOrder=%d, Skipped=%d, Failed=%d, Updates=%d, Created=%d, ClassFailures=%d, Duration=%v}",
		s.Source,
		s.TotalRaces,
		s.ProcessedRaces,
		s.Qualifiers,
		s.Duplicates,
		s.OutOfOrder,
		s.SkippedRaces,
		s.FailedRaces,
		s.EntityUpdates,
		s.EntitiesCreated,
		len(s.ClassFailures),
		s.Duration,
	)
}
