package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the CURP service. All methods are safe
// on a nil receiver.
type Metrics struct {
	// Operation outcomes by operation (encode, validate, name_match, parse)
	// and outcome (ok, match, mismatch, invalid, error)
	Operations *prometheus.CounterVec

	// Operation latency
	Latency *prometheus.HistogramVec

	// Issued-code cache lookups by result (hit, miss, error)
	CacheLookups *prometheus.CounterVec

	// 1 while the cache runs on its in-memory fallback
	CacheDegraded prometheus.Gauge

	// Identity prefixes rewritten by the offensive-word filter
	OffensiveFiltered prometheus.Counter

	// Items per batch request
	BatchSize prometheus.Histogram

	// Audit events dropped because the sink or buffer failed
	AuditDropped prometheus.Counter
}

// New registers the CURP metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curp_operations_total",
			Help: "CURP operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curp_operation_duration_seconds",
			Help:    "Duration of CURP operations including cache access",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"operation"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curp_cache_lookups_total",
			Help: "Issued-code cache lookups by result",
		}, []string{"result"}),

		CacheDegraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "curp_cache_degraded",
			Help: "1 while the issued-code cache serves from its in-memory fallback",
		}),

		OffensiveFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "curp_offensive_prefix_filtered_total",
			Help: "Identity prefixes rewritten by the offensive-word filter",
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "curp_batch_items",
			Help:    "Number of items per batch request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		AuditDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "curp_audit_events_dropped_total",
			Help: "Audit events that could not be emitted",
		}),
	}
}

func (m *Metrics) IncrementOperation(operation, outcome string) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.Latency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SetCacheDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.CacheDegraded.Set(1)
		return
	}
	m.CacheDegraded.Set(0)
}

func (m *Metrics) IncrementOffensiveFiltered() {
	if m != nil {
		m.OffensiveFiltered.Inc()
	}
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

func (m *Metrics) IncrementAuditDropped() {
	if m != nil {
		m.AuditDropped.Inc()
	}
}
