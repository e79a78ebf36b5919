package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transfer directions used as the "direction" label.
const (
	DirectionDownload = "download"
	DirectionUpload   = "upload"
	DirectionArchive  = "archive"
	DirectionPreview  = "preview"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	RequestsActive  prometheus.Gauge

	// File operation metrics
	FileOps        *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec

	// Transfer metrics
	BytesTransferred  *prometheus.CounterVec
	StreamDisconnects prometheus.Counter

	// Mount enumeration metrics
	DriveEnumerations *prometheus.CounterVec

	// Lifecycle metrics
	IdleShutdowns prometheus.Counter
	LoginFailures prometheus.Counter

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON health endpoint.
type MetricsSnapshot struct {
	TotalRequests int64   `json:"totalRequests"`
	TotalErrors   int64   `json:"totalErrors"`
	TotalDuration float64 `json:"-"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	BytesOut      int64   `json:"bytesOut"`
	BytesIn       int64   `json:"bytesIn"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several servers (and tests) can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedeck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedeck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 120},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedeck_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedeck_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		RequestsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "filedeck_http_requests_active",
				Help: "Number of in-flight HTTP requests",
			},
		),

		FileOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedeck_file_operations_total",
				Help: "Total number of file system operations",
			},
			[]string{"op", "status"},
		),
		FileOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedeck_file_operation_duration_seconds",
				Help:    "File system operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"op"},
		),

		BytesTransferred: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedeck_bytes_transferred_total",
				Help: "Bytes moved between clients and disk",
			},
			[]string{"direction"},
		),
		StreamDisconnects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filedeck_stream_disconnects_total",
				Help: "Streams aborted because the client went away",
			},
		),

		DriveEnumerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedeck_drive_enumerations_total",
				Help: "Mount table enumerations by result",
			},
			[]string{"result"},
		),

		IdleShutdowns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filedeck_idle_shutdowns_total",
				Help: "Listener shutdowns triggered by inactivity",
			},
		),
		LoginFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filedeck_login_failures_total",
				Help: "Rejected login attempts",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "filedeck_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordFileOp records the outcome of a file system operation.
func (m *Metrics) RecordFileOp(op, status string, duration time.Duration) {
	m.FileOps.WithLabelValues(op, status).Inc()
	m.FileOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// AddBytes counts bytes moved in the given direction.
func (m *Metrics) AddBytes(direction string, n int64) {
	if n <= 0 {
		return
	}
	m.BytesTransferred.WithLabelValues(direction).Add(float64(n))

	m.mu.Lock()
	if direction == DirectionUpload {
		m.snapshot.BytesIn += n
	} else {
		m.snapshot.BytesOut += n
	}
	m.mu.Unlock()
}

func (m *Metrics) IncStreamDisconnects() {
	m.StreamDisconnects.Inc()
}

// RecordDriveEnumeration records a mount table lookup ("ok", "error", "open").
func (m *Metrics) RecordDriveEnumeration(result string) {
	m.DriveEnumerations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncIdleShutdowns() {
	m.IdleShutdowns.Inc()
}

func (m *Metrics) IncLoginFailures() {
	m.LoginFailures.Inc()
}

// Snapshot returns a copy of the JSON-facing counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.TotalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
