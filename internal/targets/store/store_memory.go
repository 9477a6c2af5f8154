// Package store persists the ordered sync target list.
package store

import (
	"context"
	"slices"
	"sync"

	"pcps/internal/targets/models"
	"pcps/pkg/platform/sentinel"
)

// ErrNotFound is returned by Load before any list has been written.
var ErrNotFound = sentinel.ErrNotFound

// UpdateFunc receives the current list (nil when never written) and returns
// the list to store.
type UpdateFunc func(current []models.Target) ([]models.Target, error)

// InMemoryStore keeps the list in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	targets []models.Target
	written bool
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) ([]models.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.written {
		return nil, ErrNotFound
	}
	return slices.Clone(s.targets), nil
}

// Update applies fn under the write lock; an error from fn leaves the list unchanged.
func (s *InMemoryStore) Update(_ context.Context, fn UpdateFunc) ([]models.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []models.Target
	if s.written {
		current = slices.Clone(s.targets)
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []models.Target{}
	}
	s.targets = slices.Clone(next)
	s.written = true
	return slices.Clone(next), nil
}
