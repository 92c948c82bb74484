package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
	})

	t.Run("round-trips a valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseUserID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, raw.String(), id.String())
		assert.False(t, id.IsZero())
	})
}

func TestTypedIDsAreDistinct(t *testing.T) {
	// Compile-time property: a RegistrationID cannot be assigned to a UserID.
	// var uid UserID = NewRegistrationID()  // type mismatch
	userID := NewUserID()
	regID := NewRegistrationID()
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(regID))
}

func TestParseBloodType(t *testing.T) {
	for _, bt := range BloodTypes {
		parsed, err := ParseBloodType(bt.String())
		require.NoError(t, err)
		assert.Equal(t, bt, parsed)
	}

	_, err := ParseBloodType("")
	assert.Error(t, err)
	_, err = ParseBloodType("C+")
	assert.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanApprove())
	assert.True(t, RoleStaff.CanApprove())
	assert.False(t, RoleDonor.CanApprove())
	assert.False(t, RoleMedicalCenter.CanApprove())

	_, err := ParseRole("superuser")
	assert.Error(t, err)
}
