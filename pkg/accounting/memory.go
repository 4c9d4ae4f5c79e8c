package accounting

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps usage records in memory; the default store when no
// database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []UsageRecord
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Record appends one usage record.
func (s *MemoryStore) Record(_ context.Context, rec UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	s.records = append(s.records, rec)
	return nil
}

// Summarize aggregates records inside [from, to]. Zero bounds are open.
func (s *MemoryStore) Summarize(_ context.Context, from, to time.Time) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	for _, rec := range s.records {
		if !from.IsZero() && rec.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Timestamp.After(to) {
			continue
		}
		sum.TotalRecords++
		sum.TotalPromptTokens += int64(rec.PromptTokens)
		sum.TotalCompletionTokens += int64(rec.CompletionTokens)
		sum.TotalTokens += int64(rec.TotalTokens)
	}
	return sum, nil
}

// Records returns a copy of all stored records.
func (s *MemoryStore) Records() []UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
