package store

import (
	"sync"

	"cognisense-backend/internal/models"
)

// ActivityStore is an in-memory, per-user, append-only record collection.
// Reads return copies so callers never alias stored slices.
type ActivityStore struct {
	mu      sync.RWMutex
	records map[string][]models.EnrichedRecord
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{records: make(map[string][]models.EnrichedRecord)}
}

func (s *ActivityStore) Append(rec models.EnrichedRecord) {
	s.mu.Lock()
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
	s.mu.Unlock()
}

// Recent returns the last limit records in arrival order and the user's
// total record count.
func (s *ActivityStore) Recent(userID string, limit int) ([]models.EnrichedRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[userID]
	total := len(all)
	start := 0
	if limit >= 0 && total > limit {
		start = total - limit
	}
	out := make([]models.EnrichedRecord, total-start)
	copy(out, all[start:])
	return out, total
}

func (s *ActivityStore) All(userID string) []models.EnrichedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.EnrichedRecord, len(s.records[userID]))
	copy(out, s.records[userID])
	return out
}

// Clear drops every record for userID and returns how many were removed.
func (s *ActivityStore) Clear(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records[userID])
	delete(s.records, userID)
	return n
}

func (s *ActivityStore) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[userID])
}
