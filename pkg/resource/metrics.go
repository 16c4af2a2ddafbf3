package resource

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels recorded in addition to Kind.String().
const (
	outcomeFresh     = "fresh"
	outcomeTransport = "transport_error"
	outcomeNoToken   = "no_access_token"
)

// Metrics counts resource fetch outcomes.
type Metrics struct {
	fetches *prometheus.CounterVec
}

// NewMetrics creates the identity_resource_fetch_total counter and registers
// it with reg. A nil reg leaves it unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identity",
			Subsystem: "resource",
			Name:      "fetch_total",
			Help:      "Resource cache lookups by source and outcome.",
		}, []string{"source", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches)
	}
	return m
}

func (m *Metrics) observe(source, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
}
