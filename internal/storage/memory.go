package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. It outlives the stores that use
// it, so tests can "restart" a store against the same MemoryStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Apply(_ context.Context, batch *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range batch.Ops() {
		if op.Delete {
			delete(s.values, op.Key)
			continue
		}
		s.values[op.Key] = op.Value
	}
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
