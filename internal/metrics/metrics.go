// Package metrics holds the Prometheus collectors for booking operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors and the registry they live in.
type Metrics struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	sessionMinutes prometheus.Histogram
	feedEvents     *prometheus.CounterVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boothnow",
			Name:      "booking_operations_total",
			Help:      "Booking operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		sessionMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "boothnow",
			Name:      "session_minutes",
			Help:      "Billed minutes of settled sessions.",
			Buckets:   []float64{5, 15, 30, 60, 90, 120, 180, 240},
		}),
		feedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boothnow",
			Name:      "feed_events_total",
			Help:      "Booth events published to the notification feed.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.operations,
		m.sessionMinutes,
		m.feedEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation counts one booking operation outcome. Nil-safe.
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveSession records the billed minutes of a settled session. Nil-safe.
func (m *Metrics) ObserveSession(minutes int) {
	if m == nil {
		return
	}
	m.sessionMinutes.Observe(float64(minutes))
}

// ObserveEvent counts a feed event. Nil-safe.
func (m *Metrics) ObserveEvent(kind string) {
	if m == nil {
		return
	}
	m.feedEvents.WithLabelValues(kind).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
