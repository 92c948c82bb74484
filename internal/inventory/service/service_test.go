package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/compat"
	"bloodbank/internal/inventory"
	"bloodbank/internal/inventory/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
)

func newTestService() (*Service, *store.MemoryStore) {
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, logger), st
}

func TestCreditValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.BloodType("X+"), 1, nil)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))

	_, err = svc.Credit(ctx, id.APos, 0, nil)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))

	_, err = svc.Credit(ctx, id.APos, -3, nil)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}

func TestCreditAndGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	staff := id.NewUserID()

	rec, err := svc.Credit(ctx, id.APos, 5, &staff)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Quantity)

	got, err := svc.Get(ctx, id.APos)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	_, err = svc.Get(ctx, id.ONeg)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestDebitInsufficientStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.BPos, 2, nil)
	require.NoError(t, err)

	_, err = svc.Debit(ctx, id.BPos, 3)
	assert.True(t, derrors.HasCode(err, derrors.CodeInsufficientStock))

	// The failed debit must not have touched the quantity.
	rec, err := svc.Get(ctx, id.BPos)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Quantity)

	_, err = svc.Debit(ctx, id.ABNeg, 1)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestCheckAvailabilityDirectStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.APos, 5, nil)
	require.NoError(t, err)

	report, err := svc.CheckAvailability(ctx, id.APos, 2)
	require.NoError(t, err)
	assert.True(t, report.IsAvailable)
	assert.Equal(t, 5, report.AvailableQuantity)
	assert.Equal(t, "Blood type A+ is available with 5 units in stock", report.Message)
}

// A request for more than is on hand lists compatible substitutes ordered by
// scarcity rank.
func TestCheckAvailabilityListsSubstitutes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.APos, 5, nil)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, id.ONeg, 3, nil)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, id.ABNeg, 4, nil) // incompatible with A+
	require.NoError(t, err)

	report, err := svc.CheckAvailability(ctx, id.APos, 10)
	require.NoError(t, err)
	assert.False(t, report.IsAvailable)
	assert.Equal(t, 5, report.AvailableQuantity)
	assert.Equal(t, []id.BloodType{id.ONeg, id.OPos, id.ANeg, id.APos}, report.AllCompatibleTypes)
	assert.Equal(t, []id.BloodType{id.ONeg, id.APos}, typesOf(report.AvailableCompatibleTypes))
	assert.Equal(t,
		"Blood type A+ is not sufficiently stocked. Compatible blood types available: O- (3), A+ (5)",
		report.Message)
}

// O- accepts only O-; with the shelf bare of it there is nothing to offer.
func TestCheckAvailabilityUniversalDonorExhausted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.ABPos, 20, nil)
	require.NoError(t, err)

	report, err := svc.CheckAvailability(ctx, id.ONeg, 1)
	require.NoError(t, err)
	assert.False(t, report.IsAvailable)
	assert.Empty(t, report.AvailableCompatibleTypes)
	assert.Equal(t,
		"Blood type O- is not available and no compatible blood types are in stock",
		report.Message)
}

type fakeCache struct {
	reports     map[string]*inventory.AvailabilityReport
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{reports: make(map[string]*inventory.AvailabilityReport)}
}

func (c *fakeCache) key(bt id.BloodType, amount int) string {
	return fmt.Sprintf("%s:%d", bt, amount)
}

func (c *fakeCache) Get(_ context.Context, bt id.BloodType, amount int) (*inventory.AvailabilityReport, error) {
	if r, ok := c.reports[c.key(bt, amount)]; ok {
		return r, nil
	}
	return nil, sentinel.ErrNotFound
}

func (c *fakeCache) Set(_ context.Context, r *inventory.AvailabilityReport) error {
	c.reports[c.key(r.BloodType, r.RequestedAmount)] = r
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.reports = make(map[string]*inventory.AvailabilityReport)
	c.invalidated++
	return nil
}

func TestCheckAvailabilityUsesCache(t *testing.T) {
	svc, _ := newTestService()
	cache := newFakeCache()
	svc.WithCache(cache)
	ctx := context.Background()

	_, err := svc.Credit(ctx, id.OPos, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated, "credit invalidates the cache")

	first, err := svc.CheckAvailability(ctx, id.OPos, 2)
	require.NoError(t, err)

	// Second identical check is served from the cache.
	second, err := svc.CheckAvailability(ctx, id.OPos, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, cache.reports, 1)

	// A debit drops the cached reports so stale answers never survive.
	_, err = svc.Debit(ctx, id.OPos, 4)
	require.NoError(t, err)
	assert.Empty(t, cache.reports)
}

// flakyStore times out on the first mutation and succeeds on the second.
type flakyStore struct {
	*store.MemoryStore
	failures int
}

func (f *flakyStore) Debit(ctx context.Context, bt id.BloodType, amount int, now time.Time) (*inventory.Record, error) {
	if f.failures > 0 {
		f.failures--
		return nil, store.ErrLockTimeout
	}
	return f.MemoryStore.Debit(ctx, bt, amount, now)
}

func TestDebitRetriesOnceOnLockTimeout(t *testing.T) {
	mem := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	_, err := mem.Credit(ctx, id.ANeg, 2, nil, time.Now())
	require.NoError(t, err)

	t.Run("single timeout is retried", func(t *testing.T) {
		svc := New(&flakyStore{MemoryStore: mem, failures: 1}, logger)
		rec, err := svc.Debit(ctx, id.ANeg, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, rec.Quantity)
	})

	t.Run("persistent timeout surfaces as CodeTimeout", func(t *testing.T) {
		svc := New(&flakyStore{MemoryStore: mem, failures: 2}, logger)
		_, err := svc.Debit(ctx, id.ANeg, 1)
		assert.True(t, derrors.HasCode(err, derrors.CodeTimeout))
		assert.True(t, derrors.Retryable(err))
	})
}

func TestCheckAvailabilityRejectsBadInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CheckAvailability(ctx, id.BloodType("nope"), 1)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))

	_, err = svc.CheckAvailability(ctx, id.APos, 0)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}

func typesOf(avail []compat.Availability) []id.BloodType {
	types := make([]id.BloodType, 0, len(avail))
	for _, a := range avail {
		types = append(types, a.BloodType)
	}
	return types
}
