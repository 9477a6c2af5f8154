package store

import (
	"context"
	"sync"
	"time"

	"pcps/internal/family/models"
)

// InMemoryStore keeps the document in process memory.
type InMemoryStore struct {
	mu  sync.RWMutex
	doc *models.Document
	now func() time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for commit stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewInMemory(opts ...Option) *InMemoryStore {
	o := buildOptions(opts)
	return &InMemoryStore{now: o.now}
}

func (s *InMemoryStore) Load(_ context.Context) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNotFound
	}
	return s.doc.Clone(), nil
}

func (s *InMemoryStore) Commit(_ context.Context, doc *models.Document) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := stamp(s.doc, doc, s.now())
	if err != nil {
		return nil, err
	}
	s.doc = next
	return next.Clone(), nil
}
