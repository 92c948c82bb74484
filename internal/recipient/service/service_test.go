package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/recipient/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func newService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.NewMemoryStore(), logger)
}

func TestCreateValidation(t *testing.T) {
	svc := newService()
	ctx := requestcontext.WithTime(context.Background(), testNow)

	cases := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Age: 40, BloodType: "A+"}},
		{"zero age", Input{Name: "Binh Tran", BloodType: "A+"}},
		{"bad blood type", Input{Name: "Binh Tran", Age: 40, BloodType: "Z+"}},
		{"bad gender", Input{Name: "Binh Tran", Age: 40, BloodType: "A+", Gender: "unknown"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput), "got %v", err)
		})
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := newService()
	ctx := requestcontext.WithTime(context.Background(), testNow)

	rec, err := svc.Create(ctx, Input{
		Name: "Binh Tran", Age: 42, BloodType: "O-",
		Gender: "male", HeightCm: 172, WeightKg: 68,
	})
	require.NoError(t, err)
	assert.Equal(t, id.ONeg, rec.BloodType)
	assert.Equal(t, id.GenderMale, rec.Gender)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Binh Tran", got.Name)

	_, err = svc.Get(ctx, id.NewRecipientID())
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestGenderIsOptional(t *testing.T) {
	svc := newService()
	ctx := requestcontext.WithTime(context.Background(), testNow)

	rec, err := svc.Create(ctx, Input{Name: "Binh Tran", Age: 42, BloodType: "AB+"})
	require.NoError(t, err)
	assert.Empty(t, rec.Gender)
}

func TestListOrderedByCreation(t *testing.T) {
	svc := newService()

	for i, name := range []string{"First Patient", "Second Patient", "Third Patient"} {
		ctx := requestcontext.WithTime(context.Background(), testNow.Add(time.Duration(i)*time.Minute))
		_, err := svc.Create(ctx, Input{Name: name, Age: 30 + i, BloodType: "B+"})
		require.NoError(t, err)
	}

	recipients, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recipients, 3)
	assert.Equal(t, "First Patient", recipients[0].Name)
	assert.Equal(t, "Third Patient", recipients[2].Name)
}
