package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus instruments exposed at /metrics.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dbOperationsTotal   *prometheus.CounterVec
	dbOperationDuration *prometheus.HistogramVec
	tableKeysTotal      *prometheus.GaugeVec
}

// NewMetrics registers and returns the metric set for one server instance,
// against its own registry rather than the global default — so that
// building more than one Server in the same process (as happens across
// table-driven tests) never collides on duplicate metric names.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusdb_http_requests_total",
				Help: "Total number of HTTP requests served.",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plusdb_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusdb_db_operations_total",
				Help: "Total number of facade operations, by outcome.",
			},
			[]string{"operation", "status"},
		),
		dbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plusdb_db_operation_duration_seconds",
				Help:    "Facade operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		tableKeysTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plusdb_table_keys_total",
				Help: "Number of keys in a table as of the last scan.",
			},
			[]string{"table"},
		),
	}
}

// RecordOperation records the outcome and latency of one facade call.
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
	m.dbOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetTableKeys records table's key count, typically after a scan.
func (m *Metrics) SetTableKeys(table string, count int) {
	m.tableKeysTotal.WithLabelValues(table).Set(float64(count))
}

// Handler returns the /metrics HTTP handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps handler so every call records request count and
// latency, and the in-handler status code is captured via responseWriter.
func (m *Metrics) Instrument(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)
		m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
