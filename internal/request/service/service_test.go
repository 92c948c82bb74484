package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	invstore "bloodbank/internal/inventory/store"
	"bloodbank/internal/notify"
	"bloodbank/internal/notify/mocks"
	notifysvc "bloodbank/internal/notify/service"
	notifystore "bloodbank/internal/notify/store"
	"bloodbank/internal/request"
	reqstore "bloodbank/internal/request/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

type fixture struct {
	svc         *Service
	reqs        *reqstore.MemoryStore
	inv         *invstore.MemoryStore
	notifyLog   *notifystore.MemoryStore
	requesterID id.UserID
	staffID     id.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctrl := gomock.NewController(t)
	channel := mocks.NewMockNotifier(ctrl)
	channel.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	notifyLog := notifystore.NewMemoryStore()
	dispatcher := notify.NewDispatcher(channel, logger)
	t.Cleanup(dispatcher.Close)
	notifications := notifysvc.New(notifyLog, dispatcher, logger)

	reqs := reqstore.NewMemoryStore()
	inv := invstore.NewMemoryStore()
	tx := NewMemoryTxRunner(reqs, inv)

	svc := New(reqs, tx, notifications, logger)
	return &fixture{
		svc: svc, reqs: reqs, inv: inv, notifyLog: notifyLog,
		requesterID: id.NewUserID(), staffID: id.NewUserID(),
	}
}

func (f *fixture) stock(t *testing.T, bloodType id.BloodType, qty int) {
	t.Helper()
	_, err := f.inv.Credit(context.Background(), bloodType, qty, nil, testNow)
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, bloodType id.BloodType) int {
	t.Helper()
	rec, err := f.inv.Get(context.Background(), bloodType)
	require.NoError(t, err)
	return rec.Quantity
}

func validInput() CreateInput {
	return CreateInput{
		PatientName: "Jo Okafor",
		BloodType:   id.APos,
		Amount:      2,
		Urgency:     request.UrgencyUrgent,
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing patient name", func(in *CreateInput) { in.PatientName = "  " }},
		{"unknown blood type", func(in *CreateInput) { in.BloodType = "C+" }},
		{"zero amount", func(in *CreateInput) { in.Amount = 0 }},
		{"negative amount", func(in *CreateInput) { in.Amount = -1 }},
		{"unknown urgency", func(in *CreateInput) { in.Urgency = "panic" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.Create(ctx, f.requesterID, in)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
		})
	}
}

func TestCreateDefaultsUrgency(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Urgency = ""
	req, err := f.svc.Create(testCtx(), f.requesterID, in)
	require.NoError(t, err)
	assert.Equal(t, request.UrgencyNormal, req.Urgency)
	assert.Equal(t, request.StatusPending, req.Status)
}

func TestConfirmDebitsRequestedType(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.APos, 5)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.FulfilledWith)
	assert.Equal(t, id.APos, *confirmed.FulfilledWith)
	require.NotNil(t, confirmed.ProcessedBy)
	assert.Equal(t, f.staffID, *confirmed.ProcessedBy)
	assert.Equal(t, 3, f.quantity(t, id.APos))

	inApp, err := f.notifyLog.ListForUser(ctx, f.requesterID)
	require.NoError(t, err)
	require.Len(t, inApp, 1)
	assert.Equal(t, "Blood request fulfilled", inApp[0].Subject)
}

func TestConfirmWithCompatibleSubstitute(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.ONeg, 4)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	alt := id.ONeg
	confirmed, err := f.svc.ConfirmWithCompatibility(ctx, req.ID, &alt, f.staffID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.FulfilledWith)
	assert.Equal(t, id.ONeg, *confirmed.FulfilledWith)
	assert.Equal(t, id.APos, confirmed.BloodType, "requested type is preserved")
	assert.Equal(t, 2, f.quantity(t, id.ONeg))

	inApp, err := f.notifyLog.ListForUser(ctx, f.requesterID)
	require.NoError(t, err)
	require.Len(t, inApp, 1)
	assert.Contains(t, inApp[0].Body, "compatible type O-")
}

func TestConfirmRejectsIncompatibleSubstitute(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.BPos, 10)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	alt := id.BPos
	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, &alt, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeIncompatibleSubstitute))
	assert.Equal(t, 10, f.quantity(t, id.BPos), "no debit on rejection")

	got, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, got.Status)
}

func TestConfirmRejectsEmptyStockSubstitute(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	// A- is compatible with A+ but holds no stock, so it never qualifies.
	alt := id.ANeg
	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, &alt, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeIncompatibleSubstitute))
}

func TestConfirmInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.APos, 1)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeInsufficientStock))
	assert.Equal(t, 1, f.quantity(t, id.APos), "failed fulfillment leaves stock alone")

	got, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, got.Status)
}

func TestConfirmMissingStockRecord(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestDoubleConfirmDoesNotDoubleDebit(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.APos, 10)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeConflict))
	assert.Equal(t, 8, f.quantity(t, id.APos), "debit happened exactly once")
}

func TestConfirmWhileFlaggedDefersWithoutDebit(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.APos, 10)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)
	_, err = f.svc.MarkPriority(ctx, req.ID, f.staffID)
	require.NoError(t, err)

	deferred, err := f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusWaiting, deferred.Status)
	assert.Nil(t, deferred.FulfilledWith)
	assert.Equal(t, 10, f.quantity(t, id.APos), "deferral never touches stock")

	// Back in a confirmable status, the next confirm goes through.
	confirmed, err := f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusConfirmed, confirmed.Status)
	assert.Equal(t, 8, f.quantity(t, id.APos))
}

func TestMarkPriorityAndOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	flagged, err := f.svc.MarkPriority(ctx, req.ID, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPriority, flagged.Status)

	flagged, err = f.svc.MarkOutOfStock(ctx, req.ID, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusOutOfStock, flagged.Status)

	inApp, err := f.notifyLog.ListForUser(ctx, f.requesterID)
	require.NoError(t, err)
	require.Len(t, inApp, 2)
	subjects := []string{inApp[0].Subject, inApp[1].Subject}
	assert.ElementsMatch(t, []string{"Request prioritized", "Request out of stock"}, subjects)

	_, err = f.svc.MarkPriority(ctx, id.NewRequestID(), f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

// flakyTx fails the first run with a timeout; the service must retry once.
type flakyTx struct {
	inner    TxRunner
	failures int
}

func (f *flakyTx) RunInTx(ctx context.Context, fn func(reqs Store, inv InventoryStore) error) error {
	if f.failures > 0 {
		f.failures--
		return derrors.New(derrors.CodeTimeout, "fulfillment lock timeout")
	}
	return f.inner.RunInTx(ctx, fn)
}

func TestConfirmRetriesOnceOnTimeout(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	f.stock(t, id.APos, 10)

	req, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)

	f.svc.tx = &flakyTx{inner: NewMemoryTxRunner(f.reqs, f.inv), failures: 1}
	confirmed, err := f.svc.ConfirmWithCompatibility(ctx, req.ID, nil, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusConfirmed, confirmed.Status)

	f.svc.tx = &flakyTx{inner: NewMemoryTxRunner(f.reqs, f.inv), failures: 2}
	req2, err := f.svc.Create(ctx, f.requesterID, validInput())
	require.NoError(t, err)
	_, err = f.svc.ConfirmWithCompatibility(ctx, req2.ID, nil, f.staffID)
	assert.True(t, derrors.HasCode(err, derrors.CodeTimeout))
}
