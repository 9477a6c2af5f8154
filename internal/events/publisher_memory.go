package events

import (
	"context"
	"slices"
	"sync"
)

// InMemoryPublisher keeps events in process memory. It is the sink when no
// brokers are configured and the outbox behind the Kafka publisher.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []SaveEvent
	limit  int
}

// NewInMemory keeps at most limit events, dropping the oldest. Zero means unbounded.
func NewInMemory(limit int) *InMemoryPublisher {
	return &InMemoryPublisher{limit: limit}
}

func (p *InMemoryPublisher) Publish(_ context.Context, ev SaveEvent) error {
	p.append(ev)
	return nil
}

// append reports whether an older event was evicted to make room.
func (p *InMemoryPublisher) append(ev SaveEvent) (evicted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	if p.limit > 0 && len(p.events) > p.limit {
		p.events = slices.Delete(p.events, 0, len(p.events)-p.limit)
		return true
	}
	return false
}

// List returns the held events, oldest first.
func (p *InMemoryPublisher) List() []SaveEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Drain removes and returns every held event.
func (p *InMemoryPublisher) Drain() []SaveEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.events
	p.events = nil
	return out
}

// front returns the oldest held event.
func (p *InMemoryPublisher) front() (SaveEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return SaveEvent{}, false
	}
	return p.events[0], true
}

// removeFront drops the oldest event if it is still id. It may have been
// evicted meanwhile, in which case nothing is removed.
func (p *InMemoryPublisher) removeFront(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) > 0 && p.events[0].ID == id {
		p.events = slices.Delete(p.events, 0, 1)
	}
}

func (p *InMemoryPublisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
