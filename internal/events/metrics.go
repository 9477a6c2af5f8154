package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for save event publication.
type Metrics struct {
	Published           *prometheus.CounterVec
	Buffered            prometheus.Counter
	Dropped             prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with event metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcps_events_published_total",
			Help: "Save events handed to a sink, by sink and result",
		}, []string{"sink", "result"}),
		Buffered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcps_events_buffered_total",
			Help: "Save events held in the outbox while the broker was unavailable",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcps_events_dropped_total",
			Help: "Save events dropped because the outbox was full",
		}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pcps_events_circuit_breaker_state",
			Help: "Current broker circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) IncPublished(sink, result string) {
	if m != nil {
		m.Published.WithLabelValues(sink, result).Inc()
	}
}

func (m *Metrics) IncBuffered() {
	if m != nil {
		m.Buffered.Inc()
	}
}

func (m *Metrics) IncDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
