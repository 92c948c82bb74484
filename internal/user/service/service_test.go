package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bloodbank/internal/user/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
)

type stubIssuer struct{}

func (stubIssuer) GenerateAccessToken(userID id.UserID, role id.Role, _ time.Time) (string, error) {
	return "token-for-" + userID.String(), nil
}

func newService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.NewMemoryStore(), stubIssuer{}, logger)
}

func donorInput() RegisterInput {
	return RegisterInput{
		Email:     "donor@example.com",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Nguyen",
		Role:      id.RoleDonor,
		Gender:    id.GenderFemale,
		BloodType: id.ONeg,
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, donorInput())
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")))
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"missing name", func(in *RegisterInput) { in.FirstName = " " }},
		{"bad role", func(in *RegisterInput) { in.Role = "superuser" }},
		{"bad blood type", func(in *RegisterInput) { in.BloodType = "Z+" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := donorInput()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput), "got %v", err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, donorInput())
	require.NoError(t, err)

	in := donorInput()
	in.Email = "DONOR@example.com" // same address, different case
	_, err = svc.Register(ctx, in)
	assert.True(t, derrors.HasCode(err, derrors.CodeConflict))
}

func TestLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, donorInput())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, u, err := svc.Login(ctx, "donor@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
		assert.Equal(t, "token-for-"+registered.ID.String(), token)
	})

	t.Run("wrong password and unknown email answer identically", func(t *testing.T) {
		_, _, errWrongPass := svc.Login(ctx, "donor@example.com", "wrong")
		_, _, errNoUser := svc.Login(ctx, "ghost@example.com", "whatever")

		assert.True(t, derrors.HasCode(errWrongPass, derrors.CodeUnauthorized))
		assert.True(t, derrors.HasCode(errNoUser, derrors.CodeUnauthorized))
		assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, donorInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))

	err = svc.Delete(ctx, id.NewUserID())
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestUpdateProfile(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, donorInput())
	require.NoError(t, err)

	phone := "+84 90 123 4567"
	bt := id.APos
	updated, err := svc.Update(ctx, u.ID, UpdateInput{Phone: &phone, BloodType: &bt})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, id.APos, updated.BloodType)
	// Untouched fields survive.
	assert.Equal(t, "Ada", updated.FirstName)

	bad := id.BloodType("??")
	_, err = svc.Update(ctx, u.ID, UpdateInput{BloodType: &bad})
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))

	_, err = svc.Update(ctx, id.NewUserID(), UpdateInput{Phone: &phone})
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}
