package domain

import derrors "bloodbank/pkg/domain-errors"

// Gender is used by the eligibility rules that carry sex-specific thresholds
// (hemoglobin floor, donation interval, women's health checks).
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

var validGenders = map[Gender]bool{
	GenderFemale: true,
	GenderMale:   true,
	GenderOther:  true,
}

// ParseGender constructs a Gender from external input.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "gender cannot be empty")
	}
	g := Gender(s)
	if !validGenders[g] {
		return "", derrors.Newf(derrors.CodeInvalidInput, "unknown gender %q", s)
	}
	return g, nil
}

// IsValid reports whether the value is one of the known genders.
func (g Gender) IsValid() bool { return validGenders[g] }

func (g Gender) String() string { return string(g) }
