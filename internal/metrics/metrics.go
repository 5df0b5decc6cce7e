// Package metrics exposes Prometheus collectors for the HTTP layer and the estimate flow.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	committed       *prometheus.CounterVec
	renderFailures  prometheus.Counter
	renderDuration  prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimates_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estimates_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	m.committed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimates_committed_total",
		Help: "Estimates saved, by mode (create or edit).",
	}, []string{"mode"})
	m.renderFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "estimates_render_failures_total",
		Help: "Documents that could not be rendered.",
	})
	m.renderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimates_render_duration_seconds",
		Help:    "Time spent rendering a document to disk.",
		Buckets: prometheus.DefBuckets,
	})
	for _, c := range []prometheus.Collector{
		m.requests, m.requestDuration, m.committed, m.renderFailures, m.renderDuration,
		collectors.NewGoCollector(),
	} {
		if err := m.registry.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) EstimateCommitted(mode string) {
	if m == nil {
		return
	}
	m.committed.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveRender(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.renderFailures.Inc()
		return
	}
	m.renderDuration.Observe(d.Seconds())
}
