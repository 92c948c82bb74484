package eligibility

import (
	"fmt"
	"strings"
	"time"

	id "bloodbank/pkg/domain"
)

// Screening thresholds. Sources: national blood service donor guidelines;
// sex-specific values follow the stricter common practice.
const (
	minWeightKg = 45.0
	minHeightCm = 140.0

	minBMI = 17.0
	maxBMI = 40.0

	minSystolic  = 90
	maxSystolic  = 180
	minDiastolic = 50
	maxDiastolic = 100

	minHeartRate = 50
	maxHeartRate = 100

	minTemperature = 36.0
	maxTemperature = 37.5

	minHemoglobin       = 13.5
	minHemoglobinFemale = 12.5

	intervalDays       = 90
	intervalDaysFemale = 120

	riskCooldownDays = 180
)

func checkBasicRequirements(s Snapshot, _ DonorProfile, _ time.Time, r *report) {
	if s.WeightKg == nil || *s.WeightKg < minWeightKg {
		r.errorf("Weight must be at least 45kg")
	}
	if s.HeightCm == nil || *s.HeightCm < minHeightCm {
		r.errorf("Height must be at least 140cm")
	}

	if s.WeightKg != nil && s.HeightCm != nil && *s.HeightCm > 0 {
		bmi := calculateBMI(*s.WeightKg, *s.HeightCm)
		if bmi < minBMI {
			r.errorf(fmt.Sprintf("BMI too low (%.1f) - may increase risk of adverse reactions. Please consult with a healthcare provider.", bmi))
		} else if bmi > maxBMI {
			r.errorf(fmt.Sprintf("BMI too high (%.1f) - may increase procedural risks. Special medical evaluation required.", bmi))
		}
	}

	if strings.TrimSpace(s.BloodType) == "" {
		r.errorf("Blood type is required")
	}
}

// calculateBMI expects weight in kilograms and height in centimetres.
func calculateBMI(weightKg, heightCm float64) float64 {
	heightM := heightCm / 100.0
	return weightKg / (heightM * heightM)
}

func checkVitalSigns(s Snapshot, p DonorProfile, _ time.Time, r *report) {
	if s.SystolicBP != nil && (*s.SystolicBP < minSystolic || *s.SystolicBP > maxSystolic) {
		r.errorf("Systolic blood pressure must be between 90-180 mmHg")
	}
	if s.DiastolicBP != nil && (*s.DiastolicBP < minDiastolic || *s.DiastolicBP > maxDiastolic) {
		r.errorf("Diastolic blood pressure must be between 50-100 mmHg")
	}
	if s.HeartRate != nil && (*s.HeartRate < minHeartRate || *s.HeartRate > maxHeartRate) {
		r.errorf("Heart rate must be between 50-100 bpm")
	}
	if s.Temperature != nil && (*s.Temperature < minTemperature || *s.Temperature > maxTemperature) {
		r.errorf("Body temperature must be between 36-37.5°C")
	}
	if s.Hemoglobin != nil {
		floor := minHemoglobin
		if p.Gender == id.GenderFemale {
			floor = minHemoglobinFemale
		}
		if *s.Hemoglobin < floor {
			r.errorf(fmt.Sprintf("Hemoglobin must be at least %.1f g/dL", floor))
		}
	}
}

func checkDonationInterval(s Snapshot, p DonorProfile, now time.Time, r *report) {
	if s.LastDonationDate == nil {
		return
	}
	minInterval := intervalDays
	if p.Gender == id.GenderFemale {
		minInterval = intervalDaysFemale
	}
	elapsed := daysBetween(*s.LastDonationDate, now)
	if elapsed < minInterval {
		r.errorf(fmt.Sprintf("Must wait %d more days since last donation", minInterval-elapsed))
	}
}

func checkRiskFactors(s Snapshot, _ DonorProfile, now time.Time, r *report) {
	if s.RecentSurgery && s.SurgeryDate != nil && daysBetween(*s.SurgeryDate, now) < riskCooldownDays {
		r.errorf("Must wait 6 months after major surgery")
	}
	if s.RecentTattoo && s.TattooDate != nil && daysBetween(*s.TattooDate, now) < riskCooldownDays {
		r.errorf("Must wait 6 months after getting a tattoo")
	}
	if s.RecentPiercing && s.PiercingDate != nil && daysBetween(*s.PiercingDate, now) < riskCooldownDays {
		r.errorf("Must wait 6 months after getting a piercing")
	}
	// Travel to endemic areas flags additional screening but never blocks.
	if s.RecentTravel {
		r.warn("Recent travel to endemic areas requires additional screening")
	}
}

func checkWomensHealth(s Snapshot, p DonorProfile, _ time.Time, r *report) {
	if p.Gender != id.GenderFemale {
		return
	}
	if s.IsPregnant {
		r.errorf("Pregnant women cannot donate blood")
	}
	if s.IsBreastfeeding {
		r.errorf("Breastfeeding mothers must wait 6 months after delivery")
	}
}

func checkConsent(s Snapshot, _ DonorProfile, _ time.Time, r *report) {
	if !s.HealthDeclaration {
		r.errorf("Health declaration consent is required")
	}
	if !s.ConsentForm {
		r.errorf("Blood donation consent is required")
	}
	if !s.DataProcessingConsent {
		r.errorf("Data processing consent is required")
	}
}

// daysBetween counts whole calendar days from one instant to another, ignoring
// the time-of-day component of both.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
