// Package syncengine runs one save end to end: commit the document locally,
// then deliver the committed copy to every active target concurrently and
// collect one result per target.
//
// Only a failed commit is an error. Once the commit succeeds, every target
// failure, timeout or transport panic is reported as data on its Result.
package syncengine

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks Store,Transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine/metrics"
	targetmodels "pcps/internal/targets/models"
	"pcps/pkg/requestcontext"
)

// DefaultTimeout bounds a single delivery when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Store commits the document. Commit is the engine's only write.
type Store interface {
	Commit(ctx context.Context, doc *familymodels.Document) (*familymodels.Document, error)
}

// Transport delivers one committed document to one target. It returns a
// *DeliveryError (or any error, treated as internal) when the target did not
// accept the document.
type Transport interface {
	Deliver(ctx context.Context, target targetmodels.Target, doc *familymodels.Document) (Receipt, error)
}

// Outcome is what Save returns once the commit succeeded.
type Outcome struct {
	Document *familymodels.Document
	Results  []Result
}

// Engine executes saves. It keeps no state between calls.
type Engine struct {
	store     Store
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Engine)

// WithTimeout sets the per-target delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

func New(store Store, transport Transport, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	e := &Engine{
		store:     store,
		transport: transport,
		timeout:   DefaultTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    otel.Tracer("pcps/syncengine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Save commits doc and delivers the committed copy to the active targets in
// snapshot. It returns an error only when the commit fails, in which case no
// delivery is attempted.
func (e *Engine) Save(ctx context.Context, doc *familymodels.Document, snapshot []targetmodels.Target) (*Outcome, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "syncengine.Save")
	defer span.End()

	committed, err := e.store.Commit(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		e.metrics.ObserveSave("commit_failed", time.Since(start))
		return nil, fmt.Errorf("commit document: %w", err)
	}
	span.SetAttributes(attribute.String("pcps.family_id", committed.FamilyID))

	active := targetmodels.Active(snapshot)
	span.SetAttributes(attribute.Int("pcps.targets", len(active)))
	e.metrics.ObserveFanOut(len(active))

	results := e.fanOut(ctx, committed, active)

	failed := len(Failed(results))
	e.logger.InfoContext(ctx, "save completed",
		"request_id", requestcontext.RequestID(ctx),
		"family_id", committed.FamilyID,
		"targets", len(active),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	e.metrics.ObserveSave("committed", time.Since(start))

	return &Outcome{Document: committed, Results: results}, nil
}

// fanOut starts every delivery at once and waits for all of them. There is
// no cap on in-flight deliveries: a target that hangs until its timeout must
// not hold back any other. Each goroutine owns exactly one slot of results,
// so the slice needs no lock and stays in registry order.
func (e *Engine) fanOut(ctx context.Context, doc *familymodels.Document, active []targetmodels.Target) []Result {
	results := make([]Result, len(active))
	if len(active) == 0 {
		return results
	}

	var g errgroup.Group
	for i, target := range active {
		results[i] = pending(target)
		g.Go(func() error {
			results[i] = e.deliver(ctx, target, doc.Clone())
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func pending(t targetmodels.Target) Result {
	return Result{
		TargetID:   t.ID,
		TargetName: t.DisplayName(),
		Address:    t.Address,
		Status:     StatusPending,
	}
}

type attempt struct {
	receipt Receipt
	err     error
}

// deliver runs one transport call under its own deadline. The deadline
// ignores cancellation of the caller's context: only the timeout ends a
// delivery early. A transport that overruns is abandoned, not waited for.
func (e *Engine) deliver(ctx context.Context, target targetmodels.Target, doc *familymodels.Document) Result {
	result := pending(target)
	start := time.Now()

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()
	dctx, span := e.tracer.Start(dctx, "syncengine.deliver", trace.WithAttributes(
		attribute.String("pcps.target_id", target.ID),
		attribute.String("pcps.target_address", target.Address),
	))
	defer span.End()

	done := make(chan attempt, 1)
	go func() {
		defer func() {
			if rv := recover(); rv != nil {
				done <- attempt{err: NewDeliveryError(ErrorInternal, target.ID, "transport panicked", fmt.Errorf("%v", rv))}
			}
		}()
		receipt, err := e.transport.Deliver(dctx, target, doc)
		done <- attempt{receipt: receipt, err: err}
	}()

	var a attempt
	select {
	case a = <-done:
	case <-dctx.Done():
		a = attempt{err: NewDeliveryError(ErrorTimeout, target.ID, "no response within "+e.timeout.String(), dctx.Err())}
	}
	// A transport may itself surface the deadline; classify that as a timeout too.
	if a.err != nil && CategoryOf(a.err) != ErrorTimeout && errors.Is(a.err, context.DeadlineExceeded) {
		a.err = NewDeliveryError(ErrorTimeout, target.ID, "no response within "+e.timeout.String(), a.err)
	}

	result.Duration = time.Since(start)
	finish(&result, a)

	if a.err != nil {
		span.RecordError(a.err)
		span.SetStatus(codes.Error, string(result.Category))
		e.logger.WarnContext(ctx, "delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"target_id", target.ID,
			"status", result.Status,
			"category", result.Category,
			"error", a.err,
			"duration_ms", result.Duration.Milliseconds(),
		)
	} else {
		span.SetAttributes(attribute.Int("http.response.status_code", a.receipt.StatusCode))
		e.logger.DebugContext(ctx, "delivery succeeded",
			"request_id", requestcontext.RequestID(ctx),
			"target_id", target.ID,
			"duration_ms", result.Duration.Milliseconds(),
		)
	}
	e.metrics.ObserveDelivery(string(result.Status), string(result.Category), result.Duration)
	return result
}

// finish moves result from pending to its terminal state.
func finish(result *Result, a attempt) {
	if a.err == nil {
		code := a.receipt.StatusCode
		if code == 0 {
			code = 200
		}
		result.Success = true
		result.Status = StatusDelivered
		result.Message = fmt.Sprintf("POST %s → %s", result.Address, StatusLine(code))
		return
	}

	result.Category = CategoryOf(a.err)
	result.Status = StatusFailed
	if result.Category == ErrorTimeout {
		result.Status = StatusTimedOut
	}

	var de *DeliveryError
	switch {
	case errors.As(a.err, &de) && de.Category == ErrorRejected && de.StatusCode != 0:
		result.Message = fmt.Sprintf("POST %s → %s", result.Address, StatusLine(de.StatusCode))
	case errors.As(a.err, &de):
		result.Message = fmt.Sprintf("POST %s → %s", result.Address, de.Message)
	default:
		result.Message = fmt.Sprintf("POST %s → %v", result.Address, a.err)
	}
}
