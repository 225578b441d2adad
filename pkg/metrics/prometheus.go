// Package metrics provides Prometheus metrics for the scanmark service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Locking metrics
	lockWait     *prometheus.HistogramVec
	lockTimeouts *prometheus.CounterVec

	// Storage metrics
	recordReads  *prometheus.CounterVec
	recordWrites *prometheus.CounterVec

	// Business metrics
	scansPosted  prometheus.Counter
	marksApplied prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scanmark",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.build()
	return m
}

func (m *Manager) build() {
	m.lockWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "lock_wait_duration_ms",
		Help:      "Time spent waiting for advisory locks in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"mode"})

	m.lockTimeouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "lock_timeouts_total",
		Help:      "Number of lock acquisitions that exceeded the wait bound.",
	}, []string{"mode"})

	m.recordReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "record_reads_total",
		Help:      "Number of record reads by kind.",
	}, []string{"kind"})

	m.recordWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "record_writes_total",
		Help:      "Number of record writes by kind.",
	}, []string{"kind"})

	m.scansPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "scans_posted_total",
		Help:      "Number of scans accepted by PostScan.",
	})

	m.marksApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "marks_applied_total",
		Help:      "Number of scan mark transitions applied (no-ops excluded).",
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap bytes.",
	})

	m.systemGoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})

	m.registry.MustRegister(
		m.lockWait,
		m.lockTimeouts,
		m.recordReads,
		m.recordWrites,
		m.scansPosted,
		m.marksApplied,
		m.httpRequests,
		m.httpRequestDuration,
		m.systemMemoryUsage,
		m.systemGoroutineCount,
	)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordLockWait records the wait time for one lock acquisition attempt.
func RecordLockWait(mode string, durationMS float64) {
	globalManager.lockWait.WithLabelValues(mode).Observe(durationMS)
}

// RecordLockTimeout records a lock acquisition that hit the wait bound.
func RecordLockTimeout(mode string) {
	globalManager.lockTimeouts.WithLabelValues(mode).Inc()
}

// RecordRecordRead records one record read of the given kind.
func RecordRecordRead(kind string) {
	globalManager.recordReads.WithLabelValues(kind).Inc()
}

// RecordRecordWrite records one record write of the given kind.
func RecordRecordWrite(kind string) {
	globalManager.recordWrites.WithLabelValues(kind).Inc()
}

// RecordScanPosted records one accepted scan.
func RecordScanPosted() {
	globalManager.scansPosted.Inc()
}

// RecordMarkApplied records one applied mark transition.
func RecordMarkApplied() {
	globalManager.marksApplied.Inc()
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records the duration of one HTTP request.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMS float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMS)
}

// UpdateSystemMemoryUsage sets the current allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}
