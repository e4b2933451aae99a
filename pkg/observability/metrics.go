package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moduletree"

// Metrics implements PipelineHooks, CacheHooks and HTTPHooks with
// Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal        *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	ModulesLoaded     prometheus.Gauge
	AccessChecksTotal *prometheus.CounterVec
	LayoutDuration    prometheus.Histogram
	LayoutNodes       prometheus.Gauge
	LayoutLevels      prometheus.Gauge
	StaleResultsTotal prometheus.Counter

	CacheOpsTotal  *prometheus.CounterVec
	CacheSetBytes  *prometheus.HistogramVec
	ClientRequests *prometheus.CounterVec
	ClientDuration *prometheus.HistogramVec
	ClientErrors   *prometheus.CounterVec

	ServerRequests *prometheus.CounterVec
	ServerDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors with reg. A nil reg gets a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.FetchTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Initial data loads by outcome",
	}, []string{"outcome"})
	m.FetchDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of the concurrent initial loads",
		Buckets:   prometheus.DefBuckets,
	})
	m.ModulesLoaded = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "modules_loaded",
		Help:      "Modules returned by the last successful load",
	})
	m.AccessChecksTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_checks_total",
		Help:      "Per-module access checks by result",
	}, []string{"result"})
	m.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Time to compute a positioned graph",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})
	m.LayoutNodes = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_nodes",
		Help:      "Nodes in the last computed graph",
	})
	m.LayoutLevels = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_levels",
		Help:      "Levels in the last computed graph",
	})
	m.StaleResultsTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_results_total",
		Help:      "Responses discarded because a newer request completed first",
	})

	m.CacheOpsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_operations_total",
		Help:      "Cache lookups and writes",
	}, []string{"key_type", "op"})
	m.CacheSetBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cache_set_bytes",
		Help:      "Size of cached entries",
		Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
	}, []string{"key_type"})

	m.ClientRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_requests_total",
		Help:      "Outgoing HTTP requests by status",
	}, []string{"method", "host", "status"})
	m.ClientDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "client_request_duration_seconds",
		Help:      "Outgoing HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "host"})
	m.ClientErrors = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_errors_total",
		Help:      "Outgoing HTTP transport failures",
	}, []string{"method", "host"})

	m.ServerRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Served API requests",
	}, []string{"method", "route", "status"})
	m.ServerDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Served API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnFetchComplete(_ context.Context, modules int, d time.Duration, err error) {
	m.FetchDuration.Observe(d.Seconds())
	if err != nil {
		m.FetchTotal.WithLabelValues("error").Inc()
		return
	}
	m.FetchTotal.WithLabelValues("ok").Inc()
	m.ModulesLoaded.Set(float64(modules))
}

func (m *Metrics) OnAccessCheck(_ context.Context, granted bool, err error) {
	switch {
	case err != nil:
		m.AccessChecksTotal.WithLabelValues("error").Inc()
	case granted:
		m.AccessChecksTotal.WithLabelValues("granted").Inc()
	default:
		m.AccessChecksTotal.WithLabelValues("denied").Inc()
	}
}

func (m *Metrics) OnLayoutComplete(_ context.Context, nodes, levels int, d time.Duration) {
	m.LayoutDuration.Observe(d.Seconds())
	m.LayoutNodes.Set(float64(nodes))
	m.LayoutLevels.Set(float64(levels))
}

func (m *Metrics) OnStaleResult(context.Context, uint64) { m.StaleResultsTotal.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	m.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.ClientRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.ClientDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.ClientErrors.WithLabelValues(method, host).Inc()
}

// ObserveServed records one served API request.
func (m *Metrics) ObserveServed(method, route string, status int, d time.Duration) {
	m.ServerRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.ServerDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
