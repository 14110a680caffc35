//go:build integration

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "casetriage/pkg/platform/audit"
	"casetriage/pkg/platform/audit/store/postgres"
	"casetriage/pkg/testutil/containers"
)

func TestRelayPublishesOutboxToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping outbox relay integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mgr := containers.GetManager()
	pg := mgr.GetPostgres(t)
	broker := mgr.GetRedpanda(t)

	outbox := postgres.New(pg.DB)
	require.NoError(t, outbox.EnsureSchema(ctx))
	require.NoError(t, pg.TruncateTables(ctx, "outbox"))

	require.NoError(t, outbox.Append(ctx, audit.Event{
		CaseID:     "case-42",
		Action:     string(audit.EventCaseStatusChanged),
		FromStatus: "missing",
		ToStatus:   "found",
		Timestamp:  time.Now(),
	}))

	const topic = "casetriage.audit.test"
	producer, err := kgo.NewClient(kgo.SeedBrokers(broker.SeedBroker), kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	defer producer.Close()

	relay := NewRelay(outbox, producer, topic)
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "published entries are not relayed twice")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "case-42", string(records[0].Key))
	assert.Contains(t, string(records[0].Value), `"to_status":"found"`)
}
