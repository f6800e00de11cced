package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/doublets"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "doublets"

// PrometheusCollector implements doublets.MetricsCollector.
type PrometheusCollector struct {
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	visited  prometheus.Counter
	grows    prometheus.Counter
	capacity prometheus.Gauge
}

var _ doublets.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. An empty namespace means DefaultNamespace.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	p := &PrometheusCollector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Link store operations by kind and outcome",
		}, []string{"op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of link store operations",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op"}),
		visited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "each_visited_total",
			Help:      "Links handed to visitors",
		}),
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grow_total",
			Help:      "Slot table growths",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity_bytes",
			Help:      "Size of the slot table region",
		}),
	}

	for _, c := range []prometheus.Collector{p.ops, p.latency, p.visited, p.grows, p.capacity} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PrometheusCollector) observe(op string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.ops.WithLabelValues(op, status).Inc()
	p.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordCreate implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordCreate(d time.Duration, err error) {
	p.observe("create", d, err)
}

// RecordUpdate implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordUpdate(d time.Duration, err error) {
	p.observe("update", d, err)
}

// RecordDelete implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordDelete(d time.Duration, err error) {
	p.observe("delete", d, err)
}

// RecordCount implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordCount(d time.Duration) {
	p.observe("count", d, nil)
}

// RecordEach implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordEach(visited int, d time.Duration, err error) {
	p.observe("each", d, err)
	p.visited.Add(float64(visited))
}

// RecordGrow implements doublets.MetricsCollector.
func (p *PrometheusCollector) RecordGrow(_, newBytes int) {
	p.grows.Inc()
	p.capacity.Set(float64(newBytes))
}
