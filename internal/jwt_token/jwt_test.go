package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService([]byte("test-signing-key"), "bloodbank", time.Hour)
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, id.RoleStaff, time.Now())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, id.RoleStaff, claims.Role)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService([]byte("test-signing-key"), "bloodbank", time.Minute)

	token, err := svc.GenerateAccessToken(id.NewUserID(), id.RoleDonor, time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, derrors.HasCode(err, derrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewJWTService([]byte("key-one"), "bloodbank", time.Hour)
	verifier := NewJWTService([]byte("key-two"), "bloodbank", time.Hour)

	token, err := issuer.GenerateAccessToken(id.NewUserID(), id.RoleAdmin, time.Now())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, derrors.HasCode(err, derrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService([]byte("test-signing-key"), "bloodbank", time.Hour)
	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, derrors.HasCode(err, derrors.CodeUnauthorized))
}
