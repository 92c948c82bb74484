// Package metrics exposes Prometheus instrumentation for the inventory ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CreditsTotal       *prometheus.CounterVec
	DebitsTotal        *prometheus.CounterVec
	InsufficientTotal  *prometheus.CounterVec
	UnitsOnHand        *prometheus.GaugeVec
	AvailabilityChecks *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CreditsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_credits_total",
			Help: "Units credited to the ledger, by blood type.",
		}, []string{"blood_type"}),
		DebitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_debits_total",
			Help: "Units debited from the ledger, by blood type.",
		}, []string{"blood_type"}),
		InsufficientTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_insufficient_stock_total",
			Help: "Debits rejected because stock would go negative.",
		}, []string{"blood_type"}),
		UnitsOnHand: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inventory_units_on_hand",
			Help: "Current units in stock, by blood type.",
		}, []string{"blood_type"}),
		AvailabilityChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_availability_checks_total",
			Help: "Availability checks, by outcome.",
		}, []string{"result"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_availability_cache_lookups_total",
			Help: "Availability cache lookups, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Credit(bloodType string, amount int, newQuantity int) {
	if m == nil {
		return
	}
	m.CreditsTotal.WithLabelValues(bloodType).Add(float64(amount))
	m.UnitsOnHand.WithLabelValues(bloodType).Set(float64(newQuantity))
}

func (m *Metrics) Debit(bloodType string, amount int, newQuantity int) {
	if m == nil {
		return
	}
	m.DebitsTotal.WithLabelValues(bloodType).Add(float64(amount))
	m.UnitsOnHand.WithLabelValues(bloodType).Set(float64(newQuantity))
}

func (m *Metrics) InsufficientStock(bloodType string) {
	if m == nil {
		return
	}
	m.InsufficientTotal.WithLabelValues(bloodType).Inc()
}

func (m *Metrics) AvailabilityCheck(available bool) {
	if m == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	m.AvailabilityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(outcome).Inc()
}
