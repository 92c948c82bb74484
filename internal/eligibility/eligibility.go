// Package eligibility decides whether a donation registration may be accepted.
//
// Evaluate is a pure function over a registration snapshot and the donor's
// profile: no I/O, no side effects, no caching. Callers must re-evaluate with a
// fresh snapshot whenever the underlying fields change. Every rule runs; a
// failing rule contributes its own error or warning so staff see the complete
// report rather than the first problem found.
package eligibility

import (
	"time"

	id "bloodbank/pkg/domain"
)

// Snapshot is the screening data captured on a donation registration. Optional
// measurements are pointers; a nil field skips the corresponding rule.
type Snapshot struct {
	BloodType string

	WeightKg *float64
	HeightCm *float64

	SystolicBP  *int
	DiastolicBP *int
	HeartRate   *int
	Temperature *float64
	Hemoglobin  *float64

	LastDonationDate *time.Time

	RecentSurgery  bool
	SurgeryDate    *time.Time
	RecentTattoo   bool
	TattooDate     *time.Time
	RecentPiercing bool
	PiercingDate   *time.Time
	RecentTravel   bool

	IsPregnant      bool
	IsBreastfeeding bool

	HealthDeclaration     bool
	ConsentForm           bool
	DataProcessingConsent bool
}

// DonorProfile carries the donor attributes the rules depend on.
type DonorProfile struct {
	Gender id.Gender
}

// Result is the eligibility verdict. It is produced fresh on each evaluation
// and never mutated afterwards. Warnings never affect Eligible.
type Result struct {
	Eligible bool
	Errors   []string
	Warnings []string
}

// rule is one independent eligibility check. Rules append to the report and
// never short-circuit each other.
type rule struct {
	name  string
	apply func(s Snapshot, p DonorProfile, now time.Time, r *report)
}

var rules = []rule{
	{name: "basic_requirements", apply: checkBasicRequirements},
	{name: "vital_signs", apply: checkVitalSigns},
	{name: "donation_interval", apply: checkDonationInterval},
	{name: "risk_factors", apply: checkRiskFactors},
	{name: "womens_health", apply: checkWomensHealth},
	{name: "consent", apply: checkConsent},
}

// Evaluate runs every rule against the snapshot and returns the collected
// verdict. now anchors the day-based interval and cool-down calculations.
func Evaluate(s Snapshot, p DonorProfile, now time.Time) Result {
	var r report
	for _, rule := range rules {
		rule.apply(s, p, now, &r)
	}
	return Result{
		Eligible: len(r.errors) == 0,
		Errors:   r.errors,
		Warnings: r.warnings,
	}
}

type report struct {
	errors   []string
	warnings []string
}

func (r *report) errorf(msg string) { r.errors = append(r.errors, msg) }

func (r *report) warn(msg string) { r.warnings = append(r.warnings, msg) }
