//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/inventory"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/testutil/containers"
)

func TestAvailabilityCache(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	c := NewAvailabilityCache(rc.Client).WithTTL(time.Minute)

	report := &inventory.AvailabilityReport{
		BloodType:         id.APos,
		RequestedAmount:   2,
		IsAvailable:       true,
		AvailableQuantity: 5,
		Message:           "Blood type A+ is available with 5 units in stock",
	}

	t.Run("miss then hit", func(t *testing.T) {
		_, err := c.Get(ctx, id.APos, 2)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		require.NoError(t, c.Set(ctx, report))

		got, err := c.Get(ctx, id.APos, 2)
		require.NoError(t, err)
		assert.Equal(t, report, got)
	})

	t.Run("different amount is a different key", func(t *testing.T) {
		_, err := c.Get(ctx, id.APos, 3)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("invalidate orphans all reports", func(t *testing.T) {
		require.NoError(t, c.Invalidate(ctx))

		_, err := c.Get(ctx, id.APos, 2)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		// Reports written after the bump are visible again.
		require.NoError(t, c.Set(ctx, report))
		got, err := c.Get(ctx, id.APos, 2)
		require.NoError(t, err)
		assert.Equal(t, report, got)
	})
}
