package rotation

import (
	"context"
	"sync"
)

// MemoryStore keeps rotation counters in process memory. Suitable for
// single-node deployments and tests.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]uint64),
	}
}

func (s *MemoryStore) Advance(_ context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counters[ruleID]
	s.counters[ruleID] = c + 1
	return int(c % uint64(poolSize)), nil
}

func (s *MemoryStore) Peek(_ context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return int(s.counters[ruleID] % uint64(poolSize)), nil
}
