// Package metrics provides Prometheus metrics for the kampus API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector recorded by the client and exporter.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Request metrics
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	// Failure metrics
	errors *prometheus.CounterVec

	// Upload metrics
	uploadBytes prometheus.Counter

	// Export metrics
	exportRecords  *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kampus",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_total",
		Help:        "Total number of backend requests by operation, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"operation", "method", "status_code"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_duration_milliseconds",
		Help:        "Backend request round-trip time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation", "method"})

	m.requestsInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_in_flight",
		Help:        "Requests currently awaiting a backend response",
		ConstLabels: m.constLabels,
	})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Failed backend requests by operation and failure kind (http, network, decode)",
		ConstLabels: m.constLabels,
	}, []string{"operation", "kind"})

	m.uploadBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_bytes_total",
		Help:        "Photo bytes sent to the backend",
		ConstLabels: m.constLabels,
	})

	m.exportRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_records_total",
		Help:        "Mahasiswa records written by exports, by format",
		ConstLabels: m.constLabels,
	}, []string{"format"})

	m.exportDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_duration_milliseconds",
		Help:        "Wall time of a full export in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"format"})
}

// RecordRequest counts a completed request.
func (m *Manager) RecordRequest(operation, method, statusCode string) {
	if m.enabled {
		m.requests.WithLabelValues(operation, method, statusCode).Inc()
	}
}

// RecordRequestDuration observes a request round trip.
func (m *Manager) RecordRequestDuration(operation, method string, durationMs float64) {
	if m.enabled {
		m.requestDuration.WithLabelValues(operation, method).Observe(durationMs)
	}
}

// RecordError counts a failed request by kind.
func (m *Manager) RecordError(operation, kind string) {
	if m.enabled {
		m.errors.WithLabelValues(operation, kind).Inc()
	}
}

// IncInFlight marks a request as started.
func (m *Manager) IncInFlight() {
	if m.enabled {
		m.requestsInFlight.Inc()
	}
}

// DecInFlight marks a request as finished.
func (m *Manager) DecInFlight() {
	if m.enabled {
		m.requestsInFlight.Dec()
	}
}

// RecordUploadBytes adds n uploaded bytes.
func (m *Manager) RecordUploadBytes(n int) {
	if m.enabled && n > 0 {
		m.uploadBytes.Add(float64(n))
	}
}

// RecordExport records a finished export.
func (m *Manager) RecordExport(format string, records int, durationMs float64) {
	if !m.enabled {
		return
	}
	m.exportRecords.WithLabelValues(format).Add(float64(records))
	m.exportDuration.WithLabelValues(format).Observe(durationMs)
}

// Package-level recorders backed by the global manager.

func RecordRequest(operation, method, statusCode string) {
	globalManager.RecordRequest(operation, method, statusCode)
}

func RecordRequestDuration(operation, method string, durationMs float64) {
	globalManager.RecordRequestDuration(operation, method, durationMs)
}

func RecordError(operation, kind string) {
	globalManager.RecordError(operation, kind)
}

func IncInFlight() { globalManager.IncInFlight() }

func DecInFlight() { globalManager.DecInFlight() }

func RecordUploadBytes(n int) { globalManager.RecordUploadBytes(n) }

func RecordExport(format string, records int, durationMs float64) {
	globalManager.RecordExport(format, records, durationMs)
}

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
