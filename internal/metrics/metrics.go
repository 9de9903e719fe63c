// Package metrics exposes parser and HTTP metrics in Prometheus format.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labparse/internal/domain"
	"labparse/internal/parser"
)

// Default buckets.
var (
	ParseDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	HTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	MarkerCountBuckets   = []float64{0, 1, 5, 10, 25, 50, 100, 200}
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ParsesTotal         *prometheus.CounterVec
	ParseDuration       *prometheus.HistogramVec
	MarkersExtracted    *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BatchDocuments      *prometheus.CounterVec
}

var _ parser.Recorder = (*Metrics)(nil)

// New registers every collector under namespace.
func New(namespace string) (*Metrics, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Documents parsed, by adapter, outcome and confidence band.",
		}, []string{"adapter", "success", "confidence"}),
		ParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "End-to-end parse latency including text extraction.",
			Buckets:   ParseDurationBuckets,
		}, []string{"adapter"}),
		MarkersExtracted: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "markers_extracted",
			Help:      "Markers per parsed document.",
			Buckets:   MarkerCountBuckets,
		}, []string{"adapter"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "path"}),
		BatchDocuments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_documents_total",
			Help:      "Documents processed by batch jobs, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.ParsesTotal,
		m.ParseDuration,
		m.MarkersExtracted,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BatchDocuments,
	)
	return m, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveParse implements parser.Recorder.
func (m *Metrics) ObserveParse(adapter string, success bool, level domain.ConfidenceLevel, markers int, elapsed time.Duration) {
	if adapter == "" {
		adapter = "none"
	}
	m.ParsesTotal.WithLabelValues(adapter, strconv.FormatBool(success), string(level)).Inc()
	m.ParseDuration.WithLabelValues(adapter).Observe(elapsed.Seconds())
	m.MarkersExtracted.WithLabelValues(adapter).Observe(float64(markers))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveBatchDocument counts one batch document by outcome.
func (m *Metrics) ObserveBatchDocument(outcome string) {
	m.BatchDocuments.WithLabelValues(outcome).Inc()
}
