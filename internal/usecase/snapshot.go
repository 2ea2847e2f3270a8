package usecase

import (
	"sync"
	"time"

	"FlowScan/internal/domain/models"
)

// Health describes the outcome of the last finished cycle.
type Health struct {
	Status      string    `json:"status"`
	LastCycleAt time.Time `json:"last_cycle_at,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// SnapshotStore keeps the latest report of each mode for the HTTP API.
// Older reports are replaced, never merged.
type SnapshotStore struct {
	mu      sync.RWMutex
	flow    *models.FlowReport
	pattern *models.PatternReport
	health  Health
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{health: Health{Status: "starting"}}
}

func (s *SnapshotStore) SetFlow(r *models.FlowReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = r
}

func (s *SnapshotStore) SetPattern(r *models.PatternReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = r
}

func (s *SnapshotStore) Flow() (*models.FlowReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow, s.flow != nil
}

func (s *SnapshotStore) Pattern() (*models.PatternReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pattern, s.pattern != nil
}

// MarkCycle records the end of a cycle.
func (s *SnapshotStore) MarkCycle(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health.LastCycleAt = at
	if err != nil {
		s.health.Status = "degraded"
		s.health.LastError = err.Error()
		return
	}
	s.health.Status = "ok"
	s.health.LastError = ""
}

func (s *SnapshotStore) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}
