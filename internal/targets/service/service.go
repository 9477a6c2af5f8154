// Package service owns the ordered sync target registry. It holds no network
// logic; a save takes a Snapshot and hands it to the sync engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pcps/internal/targets/models"
	"pcps/internal/targets/store"
	dErrors "pcps/pkg/domain-errors"
	"pcps/pkg/platform/sentinel"
	"pcps/pkg/requestcontext"
)

type Store interface {
	Load(ctx context.Context) ([]models.Target, error)
	Update(ctx context.Context, fn store.UpdateFunc) ([]models.Target, error)
}

// Service manages the target list through a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the registry in order. A registry never written is empty.
func (s *Service) List(ctx context.Context) ([]models.Target, error) {
	list, err := s.store.Load(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return []models.Target{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load targets")
	}
	return list, nil
}

// Snapshot is the registry as of now, for one save. The store read is a single
// atomic operation, so later edits never leak into an in-flight save.
func (s *Service) Snapshot(ctx context.Context) ([]models.Target, error) {
	return s.List(ctx)
}

// Add appends t. An empty id is generated; an existing id is a conflict.
func (s *Service) Add(ctx context.Context, t models.Target) (models.Target, error) {
	t = normalize(t)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.store.Update(ctx, func(current []models.Target) ([]models.Target, error) {
		if indexOf(current, t.ID) >= 0 {
			return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("target %q already exists", t.ID))
		}
		return append(current, t), nil
	})
	if err != nil {
		return models.Target{}, s.translate(ctx, "add", err)
	}
	s.logger.InfoContext(ctx, "target added",
		"request_id", requestcontext.RequestID(ctx),
		"target_id", t.ID,
		"enabled", t.Enabled,
	)
	return t, nil
}

// Update replaces the target with id in place, keeping its position.
func (s *Service) Update(ctx context.Context, id string, t models.Target) (models.Target, error) {
	t = normalize(t)
	t.ID = id
	_, err := s.store.Update(ctx, func(current []models.Target) ([]models.Target, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("target %q not found", id))
		}
		current[i] = t
		return current, nil
	})
	if err != nil {
		return models.Target{}, s.translate(ctx, "update", err)
	}
	s.logger.InfoContext(ctx, "target updated",
		"request_id", requestcontext.RequestID(ctx),
		"target_id", id,
		"enabled", t.Enabled,
	)
	return t, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, func(current []models.Target) ([]models.Target, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("target %q not found", id))
		}
		return append(current[:i], current[i+1:]...), nil
	})
	if err != nil {
		return s.translate(ctx, "remove", err)
	}
	s.logger.InfoContext(ctx, "target removed",
		"request_id", requestcontext.RequestID(ctx),
		"target_id", id,
	)
	return nil
}

// Replace swaps the whole list. Missing ids are generated; duplicates are rejected.
func (s *Service) Replace(ctx context.Context, list []models.Target) ([]models.Target, error) {
	next := make([]models.Target, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, t := range list {
		t = normalize(t)
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if seen[t.ID] {
			return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("duplicate target id %q", t.ID))
		}
		seen[t.ID] = true
		next = append(next, t)
	}

	out, err := s.store.Update(ctx, func([]models.Target) ([]models.Target, error) {
		return next, nil
	})
	if err != nil {
		return nil, s.translate(ctx, "replace", err)
	}
	s.logger.InfoContext(ctx, "targets replaced",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(out),
		"active", len(models.Active(out)),
	)
	return out, nil
}

// SeedSuggested writes the suggested adapters when the registry was never
// written. It reports whether it seeded.
func (s *Service) SeedSuggested(ctx context.Context) (bool, error) {
	var seeded bool
	_, err := s.store.Update(ctx, func(current []models.Target) ([]models.Target, error) {
		// The store may run fn again after a write race; only the last run counts.
		seeded = current == nil
		if !seeded {
			return current, nil
		}
		return models.Suggested(), nil
	})
	if err != nil {
		return false, s.translate(ctx, "seed", err)
	}
	if seeded {
		s.logger.InfoContext(ctx, "seeded suggested targets")
	}
	return seeded, nil
}

func (s *Service) translate(ctx context.Context, op string, err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	s.logger.ErrorContext(ctx, "target store failed",
		"request_id", requestcontext.RequestID(ctx),
		"op", op,
		"error", err,
	)
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "targets changed concurrently, retry")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to "+op+" targets")
}

func normalize(t models.Target) models.Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	t.Address = strings.TrimSpace(t.Address)
	return t
}

func indexOf(list []models.Target, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}
