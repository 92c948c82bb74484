// Package compat answers which blood types may donate to a given recipient and
// ranks them by donor universality. The relation and priority order are fixed
// medical facts loaded once as package-level constants; no runtime mutation
// path exists.
package compat

import (
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
)

// donorsFor maps recipient blood type to the acceptable donor types, in fixed
// relation order. Every recipient can receive its own type.
var donorsFor = map[id.BloodType][]id.BloodType{
	id.ONeg:  {id.ONeg},
	id.OPos:  {id.ONeg, id.OPos},
	id.ANeg:  {id.ONeg, id.ANeg},
	id.APos:  {id.ONeg, id.OPos, id.ANeg, id.APos},
	id.BNeg:  {id.ONeg, id.BNeg},
	id.BPos:  {id.ONeg, id.OPos, id.BNeg, id.BPos},
	id.ABNeg: {id.ONeg, id.ANeg, id.BNeg, id.ABNeg},
	id.ABPos: {id.ONeg, id.OPos, id.ANeg, id.APos, id.BNeg, id.BPos, id.ABNeg, id.ABPos},
}

// priorityRank orders substitute candidates by donor scarcity: the universal
// donor O- first, the universal recipient AB+ last.
var priorityRank = map[id.BloodType]int{
	id.ONeg:  1,
	id.OPos:  2,
	id.ANeg:  3,
	id.BNeg:  4,
	id.APos:  5,
	id.BPos:  6,
	id.ABNeg: 7,
	id.ABPos: 8,
}

// rankUnknown is returned for values outside the canonical eight. Valid input
// never reaches it; hitting it signals corrupted stored data.
const rankUnknown = 9

// CompatibleDonors returns the donor types acceptable for the recipient, in
// fixed relation order. The result always contains the recipient's own type
// and must not be mutated by callers.
//
// Errors: CodeInvalidInput for a blood type outside the canonical eight.
func CompatibleDonors(recipient id.BloodType) ([]id.BloodType, error) {
	donors, ok := donorsFor[recipient]
	if !ok {
		return nil, derrors.Newf(derrors.CodeInvalidInput, "unknown blood type %q", recipient)
	}
	return donors, nil
}

// PriorityRank returns the fixed scarcity rank for a blood type (lower ranks
// are presented first when offering substitutes).
func PriorityRank(t id.BloodType) int {
	if rank, ok := priorityRank[t]; ok {
		return rank
	}
	return rankUnknown
}

// IsCompatible reports whether donor blood may be given to the recipient.
func IsCompatible(recipient, donor id.BloodType) bool {
	for _, t := range donorsFor[recipient] {
		if t == donor {
			return true
		}
	}
	return false
}

// Availability pairs a blood type with its on-hand quantity.
type Availability struct {
	BloodType id.BloodType `json:"bloodType"`
	Quantity  int          `json:"quantity"`
}

// AvailableSubstitutes filters an inventory snapshot down to the types
// compatible with the recipient that have stock on hand, ordered ascending by
// priority rank. The ordering is deterministic: rank first, fixed relation
// order as tie-break (ranks are unique, so the tie-break never fires for valid
// data).
func AvailableSubstitutes(recipient id.BloodType, snapshot []Availability) ([]Availability, error) {
	donors, err := CompatibleDonors(recipient)
	if err != nil {
		return nil, err
	}

	onHand := make(map[id.BloodType]int, len(snapshot))
	for _, item := range snapshot {
		if item.Quantity > 0 {
			onHand[item.BloodType] += item.Quantity
		}
	}

	// Walking the relation ordered by rank keeps the output deterministic
	// without a sort.
	available := make([]Availability, 0, len(donors))
	for _, t := range donorsByRank(donors) {
		if qty, ok := onHand[t]; ok {
			available = append(available, Availability{BloodType: t, Quantity: qty})
		}
	}
	return available, nil
}

func donorsByRank(donors []id.BloodType) []id.BloodType {
	ordered := append([]id.BloodType(nil), donors...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && PriorityRank(ordered[j]) < PriorityRank(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
