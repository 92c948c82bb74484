//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/inventory"
	"bloodbank/internal/platform/postgres"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, postgres.Schema())
	s := NewPostgresStore(pg.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("credit upserts", func(t *testing.T) {
		staff := id.NewUserID()

		rec, err := s.Credit(ctx, id.APos, 3, &staff, now)
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Quantity)

		rec, err = s.Credit(ctx, id.APos, 4, &staff, now)
		require.NoError(t, err)
		assert.Equal(t, 7, rec.Quantity)
		require.NotNil(t, rec.UpdatedBy)
		assert.Equal(t, staff, *rec.UpdatedBy)
	})

	t.Run("debit is conditional", func(t *testing.T) {
		_, err := s.Debit(ctx, id.BNeg, 1, now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = s.Credit(ctx, id.BNeg, 2, nil, now)
		require.NoError(t, err)

		_, err = s.Debit(ctx, id.BNeg, 5, now)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

		rec, err := s.Debit(ctx, id.BNeg, 2, now)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Quantity)
	})

	t.Run("concurrent debits admit one winner", func(t *testing.T) {
		_, err := s.Credit(ctx, id.ONeg, 3, nil, now)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.Debit(ctx, id.ONeg, 3, now)
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
			}
		}
		assert.Equal(t, 1, succeeded)

		rec, err := s.Get(ctx, id.ONeg)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Quantity)
	})

	t.Run("list is ordered canonically", func(t *testing.T) {
		records, err := s.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, records)
		for i := 1; i < len(records); i++ {
			assert.NotEqual(t, records[i-1].BloodType, records[i].BloodType)
		}
		assert.Equal(t, id.ONeg, records[0].BloodType)
	})
}
