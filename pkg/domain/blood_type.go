package domain

import derrors "bloodbank/pkg/domain-errors"

// BloodType is one of the eight ABO/Rh combinations used as the compatibility
// and inventory key. The enumeration is fixed; unknown values must be rejected
// at trust boundaries via ParseBloodType.
type BloodType string

const (
	ONeg  BloodType = "O-"
	OPos  BloodType = "O+"
	ANeg  BloodType = "A-"
	APos  BloodType = "A+"
	BNeg  BloodType = "B-"
	BPos  BloodType = "B+"
	ABNeg BloodType = "AB-"
	ABPos BloodType = "AB+"
)

// BloodTypes lists the canonical eight types in a stable presentation order.
var BloodTypes = []BloodType{ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos}

var validBloodTypes = map[BloodType]bool{
	ONeg: true, OPos: true,
	ANeg: true, APos: true,
	BNeg: true, BPos: true,
	ABNeg: true, ABPos: true,
}

// ParseBloodType constructs a BloodType from external input.
//
// Errors: CodeInvalidInput when the value is empty or not one of the eight
// canonical types.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "blood type cannot be empty")
	}
	t := BloodType(s)
	if !t.IsValid() {
		return "", derrors.Newf(derrors.CodeInvalidInput, "unknown blood type %q", s)
	}
	return t, nil
}

// IsValid reports whether the value is one of the eight canonical types.
func (t BloodType) IsValid() bool { return validBloodTypes[t] }

func (t BloodType) String() string { return string(t) }
