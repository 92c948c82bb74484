package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/disease/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

func newService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.NewMemoryStore(), logger)
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))
}

func TestDiseaseCRUD(t *testing.T) {
	svc := newService()
	ctx := testCtx()

	_, err := svc.Create(ctx, Input{Name: " "})
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))

	d, err := svc.Create(ctx, Input{Name: "Hepatitis B", BlocksDonation: true})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "hepatitis b"})
	assert.True(t, derrors.HasCode(err, derrors.CodeConflict), "names are unique case-insensitively")

	updated, err := svc.Update(ctx, d.ID, Input{Name: "Hepatitis B", Description: "Viral infection", BlocksDonation: true})
	require.NoError(t, err)
	assert.Equal(t, "Viral infection", updated.Description)

	require.NoError(t, svc.Delete(ctx, d.ID))
	_, err = svc.Get(ctx, d.ID)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))

	err = svc.Delete(ctx, id.NewDiseaseID())
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestListOrderedByName(t *testing.T) {
	svc := newService()
	ctx := testCtx()

	for _, name := range []string{"Malaria", "Hepatitis B", "Syphilis"} {
		_, err := svc.Create(ctx, Input{Name: name})
		require.NoError(t, err)
	}

	diseases, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, diseases, 3)
	assert.Equal(t, "Hepatitis B", diseases[0].Name)
	assert.Equal(t, "Syphilis", diseases[2].Name)
}
