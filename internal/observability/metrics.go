package observability

import "github.com/prometheus/client_golang/prometheus"

// Auth pipeline stages
const (
	StageAuthenticate = "authenticate"
	StageRoleGate     = "role_gate"

	OutcomeAllowed = "allowed"
)

// AuthMetrics counts authentication and authorization decisions
type AuthMetrics struct {
	Decisions *prometheus.CounterVec
}

// NewAuthMetrics registers and returns auth metrics on the given registerer
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokengate",
			Name:      "auth_decisions_total",
			Help:      "Authentication and role-gate decisions by stage and outcome.",
		}, []string{"stage", "outcome"}),
	}
	reg.MustRegister(m.Decisions)
	return m
}

// Record counts one decision. A nil receiver is a no-op so metrics stay optional.
func (m *AuthMetrics) Record(stage, outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(stage, outcome).Inc()
}
