//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/platform/postgres"
	"bloodbank/internal/request"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, postgres.Schema())
	s := NewPostgresStore(pg.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	requester := id.NewUserID()
	_, err := pg.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, 'center@example.com', 'x', 'City', 'Hospital', 'medical_center', $2, $2)`,
		requester.String(), now)
	require.NoError(t, err)

	newRequest := func() request.Request {
		return request.Request{
			ID:          id.NewRequestID(),
			RequesterID: requester,
			PatientName: "Jo Okafor",
			BloodType:   id.APos,
			Amount:      2,
			Urgency:     request.UrgencyUrgent,
			Status:      request.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("create and get round-trip", func(t *testing.T) {
		req := newRequest()
		req.Note = "surgery tomorrow"
		require.NoError(t, s.Create(ctx, req))

		got, err := s.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.PatientName, got.PatientName)
		assert.Equal(t, req.Note, got.Note)
		assert.Equal(t, request.StatusPending, got.Status)
		assert.Nil(t, got.FulfilledWith)
		assert.Nil(t, got.ProcessedBy)
	})

	t.Run("fulfill is conditional on status", func(t *testing.T) {
		staff := id.NewUserID()
		req := newRequest()
		require.NoError(t, s.Create(ctx, req))

		require.NoError(t, s.Fulfill(ctx, req.ID, id.ONeg, staff, now))

		got, err := s.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, request.StatusConfirmed, got.Status)
		require.NotNil(t, got.FulfilledWith)
		assert.Equal(t, id.ONeg, *got.FulfilledWith)
		require.NotNil(t, got.ProcessedBy)
		assert.Equal(t, staff, *got.ProcessedBy)

		err = s.Fulfill(ctx, req.ID, id.ONeg, staff, now)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)

		err = s.Fulfill(ctx, id.NewRequestID(), id.ONeg, staff, now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("fulfill accepts waiting requests", func(t *testing.T) {
		staff := id.NewUserID()
		req := newRequest()
		req.Status = request.StatusWaiting
		require.NoError(t, s.Create(ctx, req))

		require.NoError(t, s.Fulfill(ctx, req.ID, id.APos, staff, now))
	})

	t.Run("set status relabels from any status", func(t *testing.T) {
		staff := id.NewUserID()
		req := newRequest()
		require.NoError(t, s.Create(ctx, req))

		require.NoError(t, s.SetStatus(ctx, req.ID, request.StatusPriority, &staff, now))
		require.NoError(t, s.SetStatus(ctx, req.ID, request.StatusOutOfStock, &staff, now))

		got, err := s.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, request.StatusOutOfStock, got.Status)

		err = s.SetStatus(ctx, id.NewRequestID(), request.StatusPriority, &staff, now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list by requester", func(t *testing.T) {
		reqs, err := s.ListByRequester(ctx, requester)
		require.NoError(t, err)
		assert.NotEmpty(t, reqs)
		for _, req := range reqs {
			assert.Equal(t, requester, req.RequesterID)
		}

		none, err := s.ListByRequester(ctx, id.NewUserID())
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
