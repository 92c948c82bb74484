package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bloodbank/pkg/domain"
)

func TestCompatibleDonorsRelation(t *testing.T) {
	cases := map[id.BloodType][]id.BloodType{
		id.ONeg:  {id.ONeg},
		id.OPos:  {id.ONeg, id.OPos},
		id.ANeg:  {id.ONeg, id.ANeg},
		id.APos:  {id.ONeg, id.OPos, id.ANeg, id.APos},
		id.BNeg:  {id.ONeg, id.BNeg},
		id.BPos:  {id.ONeg, id.OPos, id.BNeg, id.BPos},
		id.ABNeg: {id.ONeg, id.ANeg, id.BNeg, id.ABNeg},
		id.ABPos: {id.ONeg, id.OPos, id.ANeg, id.APos, id.BNeg, id.BPos, id.ABNeg, id.ABPos},
	}
	for recipient, want := range cases {
		got, err := CompatibleDonors(recipient)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(recipient))
	}
}

// Every recipient must be able to receive its own type.
func TestCompatibleDonorsContainsSelf(t *testing.T) {
	for _, recipient := range id.BloodTypes {
		donors, err := CompatibleDonors(recipient)
		require.NoError(t, err)
		assert.Contains(t, donors, recipient)
	}
}

func TestCompatibleDonorsUnknownType(t *testing.T) {
	_, err := CompatibleDonors(id.BloodType("X+"))
	assert.Error(t, err)
}

func TestPriorityRank(t *testing.T) {
	want := map[id.BloodType]int{
		id.ONeg: 1, id.OPos: 2, id.ANeg: 3, id.BNeg: 4,
		id.APos: 5, id.BPos: 6, id.ABNeg: 7, id.ABPos: 8,
	}
	for bt, rank := range want {
		assert.Equal(t, rank, PriorityRank(bt), string(bt))
	}
	assert.Equal(t, 9, PriorityRank(id.BloodType("X+")))
}

func TestIsCompatible(t *testing.T) {
	assert.True(t, IsCompatible(id.ABPos, id.ONeg))
	assert.True(t, IsCompatible(id.APos, id.ANeg))
	assert.False(t, IsCompatible(id.ONeg, id.OPos))
	assert.False(t, IsCompatible(id.ANeg, id.BNeg))
}

func TestAvailableSubstitutesOrdering(t *testing.T) {
	snapshot := []Availability{
		{BloodType: id.APos, Quantity: 5},
		{BloodType: id.ONeg, Quantity: 3},
		{BloodType: id.BNeg, Quantity: 0},  // out of stock, excluded
		{BloodType: id.ABNeg, Quantity: 2}, // incompatible with A+, excluded
	}

	got, err := AvailableSubstitutes(id.APos, snapshot)
	require.NoError(t, err)
	// O- ranks before A+ regardless of snapshot order.
	assert.Equal(t, []Availability{
		{BloodType: id.ONeg, Quantity: 3},
		{BloodType: id.APos, Quantity: 5},
	}, got)
}

func TestAvailableSubstitutesEmptyForUniversalDonor(t *testing.T) {
	// O- can only receive O-; with no O- stock there are no substitutes.
	snapshot := []Availability{{BloodType: id.APos, Quantity: 10}}
	got, err := AvailableSubstitutes(id.ONeg, snapshot)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAvailableSubstitutesMergesDuplicateRows(t *testing.T) {
	// Legacy data could hold several rows per type; the snapshot filter sums them.
	snapshot := []Availability{
		{BloodType: id.ONeg, Quantity: 2},
		{BloodType: id.ONeg, Quantity: 3},
	}
	got, err := AvailableSubstitutes(id.OPos, snapshot)
	require.NoError(t, err)
	assert.Equal(t, []Availability{{BloodType: id.ONeg, Quantity: 5}}, got)
}
