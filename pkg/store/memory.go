package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/batchsort/pkg/pipeline"
)

// MemoryStore keeps reports in process memory. Reports are stored encoded,
// so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]entry
}

type entry struct {
	summary Summary
	data    []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]entry)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, rep *pipeline.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.ID] = entry{summary: summarize(rep), data: data}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*pipeline.Report, error) {
	s.mu.RLock()
	e, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return decode(e.data)
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	out := make([]Summary, 0, len(s.reports))
	for _, e := range s.reports {
		out = append(out, e.summary)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
