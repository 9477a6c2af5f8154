package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sync engine.
type Metrics struct {
	// Full save latency: commit plus fan-out
	SaveLatency prometheus.Histogram

	// Saves by result: committed, commit_failed
	SavesTotal *prometheus.CounterVec

	// Per-target delivery latency by terminal status
	DeliveryLatency *prometheus.HistogramVec

	// Delivery outcomes by terminal status and failure category
	DeliveryOutcome *prometheus.CounterVec

	// Targets dispatched per save
	FanOutSize prometheus.Histogram
}

// New creates a new Metrics instance with all sync engine metrics registered.
func New() *Metrics {
	return &Metrics{
		SaveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcps_sync_save_duration_seconds",
			Help:    "Duration of a full save including local commit and fan-out",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		SavesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcps_sync_saves_total",
			Help: "Total saves by result",
		}, []string{"result"}),

		DeliveryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcps_sync_delivery_duration_seconds",
			Help:    "Duration of one delivery to one target",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"status"}),

		DeliveryOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcps_sync_deliveries_total",
			Help: "Total deliveries by terminal status and failure category",
		}, []string{"status", "category"}),

		FanOutSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcps_sync_fanout_targets",
			Help:    "Number of active targets dispatched per save",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// ObserveSave records one save attempt.
func (m *Metrics) ObserveSave(result string, d time.Duration) {
	if m != nil {
		m.SavesTotal.WithLabelValues(result).Inc()
		m.SaveLatency.Observe(d.Seconds())
	}
}

// ObserveFanOut records how many targets one save dispatched to.
func (m *Metrics) ObserveFanOut(n int) {
	if m != nil {
		m.FanOutSize.Observe(float64(n))
	}
}

// ObserveDelivery records one finished delivery.
func (m *Metrics) ObserveDelivery(status, category string, d time.Duration) {
	if m != nil {
		m.DeliveryLatency.WithLabelValues(status).Observe(d.Seconds())
		m.DeliveryOutcome.WithLabelValues(status, category).Inc()
	}
}
