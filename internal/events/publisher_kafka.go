package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"pcps/pkg/platform/circuit"
)

const (
	sinkKafka  = "kafka"
	sinkOutbox = "outbox"

	defaultOutboxLimit   = 1000
	defaultProbeInterval = 30 * time.Second
)

// Producer is the slice of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher produces save events keyed by family id. While the broker
// is failing, events go to a bounded in-memory outbox and the broker is only
// probed once per interval. When the circuit closes, a background goroutine
// flushes the outbox in order.
type KafkaPublisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
	breaker  *circuit.Breaker
	outbox   *InMemoryPublisher
	probe    time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *Metrics

	mu        sync.Mutex
	lastProbe time.Time
	flushing  bool
	closed    bool
	flushes   sync.WaitGroup
}

type KafkaOption func(*KafkaPublisher)

func WithProduceTimeout(d time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) KafkaOption {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

// WithOutboxLimit bounds the events held while the broker is unavailable.
func WithOutboxLimit(n int) KafkaOption {
	return func(p *KafkaPublisher) {
		if n > 0 {
			p.outbox = NewInMemory(n)
		}
	}
}

// WithProbeInterval sets how often an open circuit lets one event through.
func WithProbeInterval(d time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.probe = d
		}
	}
}

func WithClock(now func() time.Time) KafkaOption {
	return func(p *KafkaPublisher) {
		if now != nil {
			p.now = now
		}
	}
}

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithKafkaMetrics(m *Metrics) KafkaOption {
	return func(p *KafkaPublisher) { p.metrics = m }
}

func NewKafka(producer Producer, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if producer == nil {
		return nil, errors.New("producer is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		timeout:  5 * time.Second,
		breaker:  circuit.New("kafka"),
		outbox:   NewInMemory(defaultOutboxLimit),
		probe:    defaultProbeInterval,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish blocks for at most one produce timeout; buffered events are sent
// by a background flush, never on the caller's goroutine. A nil error means
// the event was produced or queued behind a running flush. An error means the
// broker is unavailable and the event was buffered, not lost.
//
// Buffered events keep their order among themselves. An event published
// while no flush is running, including a probe, is sent directly and may go
// ahead of them.
func (p *KafkaPublisher) Publish(ctx context.Context, ev SaveEvent) error {
	if !p.breaker.IsOpen() && p.queueBehindFlush(ev) {
		return nil
	}
	if !p.shouldAttempt() {
		p.buffer(ev)
		return fmt.Errorf("broker circuit open: event %s buffered", ev.ID)
	}

	if err := p.produce(ctx, ev); err != nil {
		p.recordFailure(ctx, err)
		p.buffer(ev)
		return fmt.Errorf("produce event %s: %w", ev.ID, err)
	}

	p.metrics.IncPublished(sinkKafka, "ok")
	_, change := p.breaker.RecordSuccess()
	if change.Closed {
		p.metrics.SetCircuitBreakerState(false)
		p.logger.InfoContext(ctx, "event broker circuit closed", "topic", p.topic, "buffered", p.outbox.Len())
	}
	if !p.breaker.IsOpen() && p.outbox.Len() > 0 {
		p.startFlush(ctx)
	}
	return nil
}

// Close stops new flushes and waits for a running one to finish.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.flushes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for outbox flush: %w", ctx.Err())
	}
}

// Buffered returns the events waiting in the outbox.
func (p *KafkaPublisher) Buffered() []SaveEvent {
	return p.outbox.List()
}

// queueBehindFlush buffers ev while a flush is running so the flush sends
// it after the older events. It reports whether ev was queued.
func (p *KafkaPublisher) queueBehindFlush(ev SaveEvent) bool {
	p.mu.Lock()
	flushing := p.flushing
	p.mu.Unlock()
	if !flushing {
		return false
	}
	p.buffer(ev)
	return true
}

func (p *KafkaPublisher) shouldAttempt() bool {
	if !p.breaker.IsOpen() {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if now.Sub(p.lastProbe) < p.probe {
		return false
	}
	p.lastProbe = now
	return true
}

func (p *KafkaPublisher) recordFailure(ctx context.Context, err error) {
	p.metrics.IncPublished(sinkKafka, "error")
	_, change := p.breaker.RecordFailure()
	if !change.Opened {
		return
	}
	p.mu.Lock()
	p.lastProbe = p.now()
	p.mu.Unlock()
	p.metrics.SetCircuitBreakerState(true)
	p.logger.WarnContext(ctx, "event broker circuit opened", "topic", p.topic, "error", err)
}

func (p *KafkaPublisher) buffer(ev SaveEvent) {
	p.metrics.IncPublished(sinkOutbox, "ok")
	p.metrics.IncBuffered()
	if p.outbox.append(ev) {
		p.metrics.IncDropped()
	}
}

// startFlush runs flush on its own goroutine unless one is already running.
func (p *KafkaPublisher) startFlush(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.flushing || p.closed {
		return
	}
	p.flushing = true
	p.flushes.Add(1)
	go func() {
		defer p.flushes.Done()
		p.flush(context.WithoutCancel(ctx))
	}()
}

// flush sends the outbox oldest first. An event that fails stays at the
// front, the failure counts against the breaker and the flush stops; the
// next successful Publish starts another one.
func (p *KafkaPublisher) flush(ctx context.Context) {
	for {
		ev, ok := p.outbox.front()
		if !ok {
			p.mu.Lock()
			// Re-check under the lock: Publish may have queued after front.
			if p.outbox.Len() == 0 {
				p.flushing = false
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			continue
		}
		if err := p.produce(ctx, ev); err != nil {
			p.mu.Lock()
			p.flushing = false
			p.mu.Unlock()
			p.logger.WarnContext(ctx, "outbox flush interrupted", "remaining", p.outbox.Len(), "error", err)
			p.recordFailure(ctx, err)
			return
		}
		p.outbox.removeFront(ev.ID)
		p.breaker.RecordSuccess()
		p.metrics.IncPublished(sinkKafka, "ok")
	}
}

func (p *KafkaPublisher) produce(ctx context.Context, ev SaveEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.FamilyID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
		Timestamp: ev.OccurredAt,
	}
	return p.producer.ProduceSync(pctx, rec).FirstErr()
}
