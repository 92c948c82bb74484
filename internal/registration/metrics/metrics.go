// Package metrics instruments the donation registration flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	IntakeTotal        *prometheus.CounterVec
	ConfirmationsTotal prometheus.Counter
	CancellationsTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		IntakeTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_intake_total",
			Help: "Registration submissions, by eligibility verdict.",
		}, []string{"verdict"}),
		ConfirmationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registration_confirmations_total",
			Help: "Registrations confirmed and credited to inventory.",
		}),
		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registration_cancellations_total",
			Help: "Registrations cancelled.",
		}),
	}
}

func (m *Metrics) Intake(eligible bool) {
	if m == nil {
		return
	}
	verdict := "ineligible"
	if eligible {
		verdict = "eligible"
	}
	m.IntakeTotal.WithLabelValues(verdict).Inc()
}

func (m *Metrics) Confirmed() {
	if m == nil {
		return
	}
	m.ConfirmationsTotal.Inc()
}

func (m *Metrics) Cancelled() {
	if m == nil {
		return
	}
	m.CancellationsTotal.Inc()
}
