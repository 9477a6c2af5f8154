// Package service is the presentation boundary for the family document: load
// it, save it (commit plus fan-out), and derive per-child effective policy.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Engine,Targets,Publisher,Notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pcps/internal/events"
	"pcps/internal/family/models"
	"pcps/internal/policy"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
	dErrors "pcps/pkg/domain-errors"
	"pcps/pkg/platform/middleware/metadata"
	"pcps/pkg/platform/sentinel"
	"pcps/pkg/requestcontext"
)

type Store interface {
	Load(ctx context.Context) (*models.Document, error)
	Commit(ctx context.Context, doc *models.Document) (*models.Document, error)
}

type Engine interface {
	Save(ctx context.Context, doc *models.Document, snapshot []targetmodels.Target) (*syncengine.Outcome, error)
}

// Targets supplies the registry snapshot for saves that do not carry one.
type Targets interface {
	Snapshot(ctx context.Context) ([]targetmodels.Target, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev events.SaveEvent) error
}

type Notifier interface {
	NotifyFailures(ctx context.Context, doc *models.Document, results []syncengine.Result) (int, error)
}

type Service struct {
	store     Store
	engine    Engine
	targets   Targets
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublisher sets where save events go. Without one no events are emitted.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithNotifier sets who hears about failed deliveries.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func New(store Store, engine Engine, targets Targets, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if targets == nil {
		return nil, errors.New("targets is required")
	}
	s := &Service{
		store:   store,
		engine:  engine,
		targets: targets,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns an independent copy of the current document.
func (s *Service) Load(ctx context.Context) (*models.Document, error) {
	doc, err := s.store.Load(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no family document has been saved yet")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load document",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load document")
	}
	return doc, nil
}

// Save saves doc against the registry as it stands now.
func (s *Service) Save(ctx context.Context, doc *models.Document) (*syncengine.Outcome, error) {
	snapshot, err := s.targets.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.SaveTo(ctx, doc, snapshot)
}

// SaveTo validates doc, fills every child's policy with defaults, commits it
// and delivers it to the active targets in snapshot. Only validation and
// commit failures are errors; delivery outcomes are data on the Outcome.
func (s *Service) SaveTo(ctx context.Context, doc *models.Document, snapshot []targetmodels.Target) (*syncengine.Outcome, error) {
	if doc == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document is required")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	outcome, err := s.engine.Save(ctx, doc.WithMergedPolicies(), snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "save failed",
			"request_id", requestcontext.RequestID(ctx),
			"family_id", doc.FamilyID,
			"error", err,
		)
		return nil, translateCommit(err)
	}

	s.publish(ctx, outcome)
	s.notify(ctx, outcome)
	return outcome, nil
}

func translateCommit(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "family_id cannot change once a document exists")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "document store did not respond")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "document store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit document")
	}
}

func (s *Service) publish(ctx context.Context, outcome *syncengine.Outcome) {
	if s.publisher == nil {
		return
	}
	ev := events.NewSaveEvent(outcome.Document, outcome.Results, requestcontext.Now(ctx))
	ev.RequestID = requestcontext.RequestID(ctx)
	ev.Client = metadata.DescribeClient(requestcontext.UserAgent(ctx))
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "save event not published",
			"request_id", ev.RequestID,
			"event_id", ev.ID,
			"error", err,
		)
	}
}

func (s *Service) notify(ctx context.Context, outcome *syncengine.Outcome) {
	if s.notifier == nil || len(syncengine.Failed(outcome.Results)) == 0 {
		return
	}
	if _, err := s.notifier.NotifyFailures(ctx, outcome.Document, outcome.Results); err != nil {
		s.logger.WarnContext(ctx, "failure notification incomplete",
			"request_id", requestcontext.RequestID(ctx),
			"family_id", outcome.Document.FamilyID,
			"error", err,
		)
	}
}

// EffectivePolicy returns the defaults-applied policy for one child.
func (s *Service) EffectivePolicy(ctx context.Context, childID string) (policy.Policy, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return policy.Policy{}, err
	}
	child, ok := doc.Child(childID)
	if !ok {
		return policy.Policy{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("child %q not found", childID))
	}
	return policy.Merge(child.Policy), nil
}

// SeedExample commits the example family when nothing has been saved yet.
// It reports whether it wrote anything.
func (s *Service) SeedExample(ctx context.Context) (bool, error) {
	_, err := s.store.Load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return false, fmt.Errorf("check document: %w", err)
	}
	doc := models.Example()
	if _, err := s.store.Commit(ctx, doc.WithMergedPolicies()); err != nil {
		return false, fmt.Errorf("seed example document: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded example family", "family_id", doc.FamilyID)
	return true, nil
}
