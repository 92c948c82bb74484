//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"bloodbank/internal/notify"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/testutil/containers"
)

func TestPublisherRoundTrip(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	const topic = "bloodbank.notifications.test"
	require.NoError(t, rp.CreateTopic(ctx, topic))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub, err := NewPublisher(rp.Brokers, topic, logger)
	require.NoError(t, err)
	defer pub.Close()

	donor := id.NewUserID()
	msg := notify.Message{UserID: donor, Subject: "Donation confirmed", Body: "Thank you"}
	require.NoError(t, pub.Notify(ctx, msg))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, donor.String(), string(records[0].Key))

	var got notify.Message
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, msg, got)
}
