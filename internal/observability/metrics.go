package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's Prometheus collectors. All methods are nil-safe
// so callers and tests may pass a nil *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	viewLatency     *prometheus.HistogramVec
	snapshotResults *prometheus.CounterVec
	snapshotSize    *prometheus.GaugeVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queue_dashboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "queue_dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queue_dashboard",
			Name:      "http_errors_total",
			Help:      "Errors returned to clients by error code.",
		}, []string{"route", "method", "code"}),
		viewLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "queue_dashboard",
			Name:      "view_compute_duration_seconds",
			Help:      "Time spent aggregating, sorting and paginating a view.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"view"}),
		snapshotResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queue_dashboard",
			Name:      "snapshot_refresh_total",
			Help:      "Snapshot refresh attempts by result.",
		}, []string{"result"}),
		snapshotSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "queue_dashboard",
			Name:      "snapshot_records",
			Help:      "Records in the most recent snapshot.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestLatency, m.errors, m.viewLatency, m.snapshotResults, m.snapshotSize,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// ObserveView records how long a view computation took.
func (m *Metrics) ObserveView(view string, duration time.Duration) {
	if m == nil {
		return
	}
	m.viewLatency.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordSnapshot counts a refresh and, on success, the snapshot size.
func (m *Metrics) RecordSnapshot(ok bool, queues, tickets int) {
	if m == nil {
		return
	}
	if !ok {
		m.snapshotResults.WithLabelValues("error").Inc()
		return
	}
	m.snapshotResults.WithLabelValues("ok").Inc()
	m.snapshotSize.WithLabelValues("queues").Set(float64(queues))
	m.snapshotSize.WithLabelValues("tickets").Set(float64(tickets))
}
