package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps the most recent runs in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	runs     []*Run // oldest first
}

// NewMemoryStore creates a store that keeps at most capacity runs.
// A non-positive capacity keeps 1000.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Record(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if over := len(s.runs) - s.capacity; over > 0 {
		s.runs = slices.Delete(s.runs, 0, over)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit = min(normalizeLimit(limit), len(s.runs))
	out := make([]*Run, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

func (s *MemoryStore) Cleanup(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.runs)
	s.runs = slices.DeleteFunc(s.runs, func(r *Run) bool { return r.CreatedAt.Before(before) })
	return n - len(s.runs), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
