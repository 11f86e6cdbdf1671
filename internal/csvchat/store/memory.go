package store

import (
	"context"
	"slices"
	"sync"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
)

// InMemoryStore holds the active dataset. Replace swaps a fully built
// dataset in one step, so readers see either the previous or the new one.
type InMemoryStore struct {
	mu      sync.RWMutex
	current entity.Dataset
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Replace makes ds the active dataset.
func (s *InMemoryStore) Replace(ctx context.Context, ds entity.Dataset) error {
	ds.Rows = slices.Clip(slices.Clone(ds.Rows))
	ds.Columns = slices.Clip(slices.Clone(ds.Columns))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ds

	return nil
}

// Current returns the active dataset. The zero Dataset means nothing was
// uploaded yet. Callers must treat the returned rows as read-only.
func (s *InMemoryStore) Current(ctx context.Context) (entity.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, nil
}
