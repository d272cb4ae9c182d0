package flatdoc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements the Metrics interface using Prometheus
type PrometheusMetrics struct {
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
	registry   prometheus.Registerer
}

// NewPrometheusMetrics creates a new Prometheus metrics instance.
// If registry is nil, the default Prometheus registry is used.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	pm := &PrometheusMetrics{
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
		registry:   registry,
	}

	pm.registerDefaultMetrics()
	return pm
}

// registerDefaultMetrics registers all standard flatdoc metrics
func (p *PrometheusMetrics) registerDefaultMetrics() {
	counter := func(key, subsystem, name, help string) {
		p.counters[key] = promauto.With(p.registry).NewCounter(prometheus.CounterOpts{
			Namespace: "flatdoc",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	histogram := func(key, subsystem, name, help string, buckets []float64) {
		p.histograms[key] = promauto.With(p.registry).NewHistogram(prometheus.HistogramOpts{
			Namespace: "flatdoc",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		})
	}

	counter(MetricSetSuccess, "store", "set_success_total", "Successful set operations")
	counter(MetricSetError, "store", "set_errors_total", "Failed set operations")
	counter(MetricGetSuccess, "store", "get_success_total", "Successful get operations")
	counter(MetricGetError, "store", "get_errors_total", "Failed get operations")
	counter(MetricCacheHit, "cache", "hits_total", "Cache hits")
	counter(MetricCacheMiss, "cache", "misses_total", "Cache misses")
	counter(MetricCacheError, "cache", "errors_total", "Cache errors (degraded, not surfaced)")

	histogram(MetricSetDuration, "store", "set_duration_seconds",
		"Set operation latency", prometheus.DefBuckets)
	histogram(MetricGetDuration, "store", "get_duration_seconds",
		"Get operation latency", prometheus.DefBuckets)
	histogram(MetricSetLeaves, "store", "set_leaves",
		"Leaf rows written per set", prometheus.ExponentialBuckets(1, 2, 12))
	histogram(MetricGetRows, "store", "get_rows",
		"Rows returned per get", prometheus.ExponentialBuckets(1, 2, 12))
}

// Increment increases a counter by 1. Unknown names are ignored.
func (p *PrometheusMetrics) Increment(name string, tags ...string) {
	if c, ok := p.counters[name]; ok {
		c.Inc()
	}
}

// Gauge sets an absolute value. Unknown names are ignored.
func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...string) {
	if g, ok := p.gauges[name]; ok {
		g.Set(value)
	}
}

// Histogram records a value distribution. Unknown names are ignored.
func (p *PrometheusMetrics) Histogram(name string, value float64, tags ...string) {
	if h, ok := p.histograms[name]; ok {
		h.Observe(value)
	}
}

// Timing records a duration in seconds against the matching histogram
func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...string) {
	if h, ok := p.histograms[name]; ok {
		h.Observe(duration.Seconds())
	}
}
