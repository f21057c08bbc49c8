// Package metrics exposes ingestion counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultStored   = "stored"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics owns a private registry so tests and multiple servers do not
// collide on the global one.
type Metrics struct {
	registry       *prometheus.Registry
	eventsTotal    *prometheus.CounterVec
	insertDuration *prometheus.HistogramVec
}

// New registers the ingestion collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "booster",
				Name:      "events_total",
				Help:      "Tracking events received, by event type and result.",
			},
			[]string{"type", "result"},
		),
		insertDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "booster",
				Name:      "event_insert_seconds",
				Help:      "Time spent inserting one tracking event.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"type"},
		),
	}
	m.registry.MustRegister(
		m.eventsTotal,
		m.insertDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveEvent records one ingestion attempt. eventType may be empty when
// the body could not be decoded.
func (m *Metrics) ObserveEvent(eventType, result string, took time.Duration) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.eventsTotal.WithLabelValues(eventType, result).Inc()
	if result == ResultStored {
		m.insertDuration.WithLabelValues(eventType).Observe(took.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// EventsTotal returns the counter for one label pair.
func (m *Metrics) EventsTotal(eventType, result string) prometheus.Counter {
	return m.eventsTotal.WithLabelValues(eventType, result)
}
