package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"curpkit/internal/ratelimit/models"
)

// Metrics is nil-safe.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Degraded  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curp_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome (allowed, rejected, error)",
		}, []string{"class", "outcome"}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "curp_ratelimit_degraded",
			Help: "1 while rate limiting runs on its in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementDecision(class models.EndpointClass, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(string(class), outcome).Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.Degraded.Set(1)
		return
	}
	m.Degraded.Set(0)
}
