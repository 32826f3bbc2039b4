package memory

import (
	"context"
	"sync"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// AttemptStore keeps attempt records in process memory. This is the reference
// backend: best effort, single process, nothing survives a restart. Safe for
// concurrent use; individual get/put/delete calls are atomic, but the store
// deliberately provides no read-modify-write primitive.
type AttemptStore struct {
	mu      sync.RWMutex
	records map[string]domain.AttemptRecord
}

// NewAttemptStore constructs an empty in-memory store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{records: make(map[string]domain.AttemptRecord)}
}

// Get returns the record for the key and whether one exists.
func (s *AttemptStore) Get(_ context.Context, key string) (domain.AttemptRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok, nil
}

// Put stores the record, replacing any previous value. Last write wins.
func (s *AttemptStore) Put(_ context.Context, key string, record domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = record
	return nil
}

// Delete removes the record for the key. Missing keys are not an error.
func (s *AttemptStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Keys returns a snapshot of all stored keys.
func (s *AttemptStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	return keys, nil
}

// Len reports the number of stored records.
func (s *AttemptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

var _ port.AttemptStore = (*AttemptStore)(nil)
