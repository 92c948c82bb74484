package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/notify"
	"bloodbank/internal/notify/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

type captureDispatcher struct {
	msgs []notify.Message
}

func (d *captureDispatcher) Enqueue(msg notify.Message) { d.msgs = append(d.msgs, msg) }

func newService() (*Service, *captureDispatcher) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := &captureDispatcher{}
	return New(store.NewMemoryStore(), d, logger), d
}

func TestSendStoresAndDispatches(t *testing.T) {
	svc, dispatched := newService()
	donor := id.NewUserID()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	n, err := svc.Send(ctx, donor, "Donation confirmed", "Thank you for donating")
	require.NoError(t, err)
	assert.False(t, n.ID.IsZero())
	assert.Equal(t, now, n.CreatedAt)

	require.Len(t, dispatched.msgs, 1)
	assert.Equal(t, "Donation confirmed", dispatched.msgs[0].Subject)

	list, err := svc.ListForUser(ctx, donor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
}

func TestSendRequiresSubject(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Send(context.Background(), id.NewUserID(), "", "body")
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}

func TestMarkRead(t *testing.T) {
	svc, _ := newService()
	donor := id.NewUserID()
	ctx := context.Background()

	n, err := svc.Send(ctx, donor, "subject", "body")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, n.ID, donor))

	list, err := svc.ListForUser(ctx, donor)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	// Another user cannot touch it.
	err = svc.MarkRead(ctx, n.ID, id.NewUserID())
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestListNewestFirst(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(store.NewMemoryStore(), nil, logger)
	donor := id.NewUserID()

	base := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	for i, subject := range []string{"oldest", "middle", "newest"} {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Minute))
		_, err := svc.Send(ctx, donor, subject, "")
		require.NoError(t, err)
	}

	list, err := svc.ListForUser(context.Background(), donor)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].Subject)
	assert.Equal(t, "oldest", list[2].Subject)
}
