// Package metrics exposes Prometheus counters for blood request fulfillment.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	fulfillments *prometheus.CounterVec
	relabels     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		fulfillments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_request_fulfillments_total",
			Help: "Fulfillment attempts by outcome.",
		}, []string{"outcome"}),
		relabels: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_request_relabels_total",
			Help: "Administrative status relabels by target status.",
		}, []string{"status"}),
	}
}

// Fulfillment outcomes.
const (
	OutcomeConfirmed    = "confirmed"
	OutcomeSubstituted  = "substituted"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeIncompatible = "incompatible_substitute"
	OutcomeDeferred     = "deferred"
	OutcomeConflict     = "conflict"
)

func (m *Metrics) Fulfillment(outcome string) {
	if m == nil {
		return
	}
	m.fulfillments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Relabel(status string) {
	if m == nil {
		return
	}
	m.relabels.WithLabelValues(status).Inc()
}
