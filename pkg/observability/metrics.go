package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "flowlayout"

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	// LayoutsTotal counts layout runs. Labels: status (success, error).
	LayoutsTotal *prometheus.CounterVec

	// LayoutDurationSeconds measures how long a layout run took.
	LayoutDurationSeconds prometheus.Histogram

	// NodesPlaced counts nodes that received a position.
	NodesPlaced prometheus.Counter

	// WarningsTotal counts non-fatal findings. Labels: code.
	WarningsTotal *prometheus.CounterVec

	// RendersTotal counts render runs. Labels: format, status.
	RendersTotal *prometheus.CounterVec

	// CacheOpsTotal counts cache operations. Labels: key_type, op (hit, miss, set).
	CacheOpsTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts served requests. Labels: method, route, code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPDurationSeconds measures request latency. Labels: method, route.
	HTTPDurationSeconds *prometheus.HistogramVec

	// HTTPInFlight tracks requests currently being served.
	HTTPInFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if any collector is already registered, like promauto does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LayoutsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "layout",
				Name:      "runs_total",
				Help:      "Total number of layout runs by status",
			},
			[]string{"status"},
		),
		LayoutDurationSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "layout",
				Name:      "duration_seconds",
				Help:      "Layout run duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		NodesPlaced: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "layout",
				Name:      "nodes_placed_total",
				Help:      "Total number of nodes that received a position",
			},
		),
		WarningsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "layout",
				Name:      "warnings_total",
				Help:      "Total non-fatal layout findings by code",
			},
			[]string{"code"},
		),
		RendersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "render",
				Name:      "runs_total",
				Help:      "Total number of render runs by format and status",
			},
			[]string{"format", "status"},
		),
		CacheOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "operations_total",
				Help:      "Total cache operations by key type and outcome",
			},
			[]string{"key_type", "op"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, placed int, d time.Duration, err error) {
	m.LayoutsTotal.WithLabelValues(status(err)).Inc()
	m.LayoutDurationSeconds.Observe(d.Seconds())
	m.NodesPlaced.Add(float64(placed))
}

func (m *Metrics) OnWarning(_ context.Context, _ string, code string) {
	m.WarningsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, _ time.Duration, err error) {
	m.RendersTotal.WithLabelValues(format, status(err)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ LayoutHooks = (*Metrics)(nil)
	_ CacheHooks  = (*Metrics)(nil)
	_ HTTPHooks   = (*Metrics)(nil)
)
