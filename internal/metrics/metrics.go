// Package metrics holds the Prometheus collectors for event fetching and
// aggregation. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "events"

// Metrics groups the collectors registered on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	fallbacks         prometheus.Counter
	organizerFailures *prometheus.CounterVec
	aggregateDur      prometheus.Histogram
	mergedEvents      prometheus.Gauge
	lastLoadTS        prometheus.Gauge
	loadsTotal        *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Event API requests by endpoint shape and outcome",
	}, []string{"endpoint", "outcome"})
	m.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "organizer_fallbacks_total",
		Help:      "Lookups retried against the organizer-scoped endpoint after a 404",
	})
	m.organizerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "organizer_failures_total",
		Help:      "Organizer fetches replaced by an empty result, by error kind",
	}, []string{"organizer_id", "kind"})
	m.aggregateDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregate_duration_seconds",
		Help:      "Time spent fetching and merging all organizers",
		Buckets:   prometheus.DefBuckets,
	})
	m.mergedEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "merged_events",
		Help:      "Number of events in the latest merged collection",
	})
	m.lastLoadTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_load_timestamp_seconds",
		Help:      "Unix timestamp of the last applied load",
	})
	m.loadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loads_total",
		Help:      "Board loads by result",
	}, []string{"result"})

	m.registry.MustRegister(
		m.requests, m.fallbacks, m.organizerFailures,
		m.aggregateDur, m.mergedEvents, m.lastLoadTS, m.loadsTotal,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest counts one API request.
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveFallback counts one organizer-scoped fallback.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// ObserveOrganizerFailure counts one isolated organizer failure.
func (m *Metrics) ObserveOrganizerFailure(organizerID, kind string) {
	if m == nil {
		return
	}
	m.organizerFailures.WithLabelValues(organizerID, kind).Inc()
}

// ObserveAggregate records the duration and size of one aggregation.
func (m *Metrics) ObserveAggregate(d time.Duration, events int) {
	if m == nil {
		return
	}
	m.aggregateDur.Observe(d.Seconds())
	m.mergedEvents.Set(float64(events))
}

// ObserveLoad counts a board load; applied loads also set the last-load timestamp.
func (m *Metrics) ObserveLoad(result string, at time.Time) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(result).Inc()
	if result == "applied" {
		m.lastLoadTS.Set(float64(at.Unix()))
	}
}
