package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"casetriage/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	pending   []postgres.Entry
	published []postgres.Entry
	limits    []int
}

func (f *fakeOutbox) ProcessPending(ctx context.Context, limit int, publish func(context.Context, []postgres.Entry) error) (int, error) {
	f.limits = append(f.limits, limit)
	n := min(limit, len(f.pending))
	if n == 0 {
		return 0, nil
	}
	batch := f.pending[:n]
	if err := publish(ctx, batch); err != nil {
		return 0, err
	}
	f.published = append(f.published, batch...)
	f.pending = f.pending[n:]
	return n, nil
}

type fakeProducer struct {
	err     error
	records []*kgo.Record
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func entry(caseID string) postgres.Entry {
	return postgres.Entry{
		ID:          uuid.New(),
		AggregateID: caseID,
		EventType:   "case_status_changed",
		Payload:     []byte(`{"case_id":"` + caseID + `"}`),
		CreatedAt:   time.Now(),
	}
}

func TestRelayOncePublishesBatch(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.Entry{entry("a"), entry("b"), entry("c")}}
	producer := &fakeProducer{}
	relay := NewRelay(outbox, producer, "casetriage.audit", WithBatchSize(2))

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, producer.records, 2)
	assert.Equal(t, "casetriage.audit", producer.records[0].Topic)
	assert.Equal(t, []byte("a"), producer.records[0].Key, "keyed by case so a case's events stay ordered")
	assert.Equal(t, "event_type", producer.records[0].Headers[0].Key)
	assert.Len(t, outbox.pending, 1)
}

func TestRelayLeavesEntriesPendingWhenBrokerFails(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.Entry{entry("a")}}
	producer := &fakeProducer{err: errors.New("broker down")}
	relay := NewRelay(outbox, producer, "casetriage.audit")

	_, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, outbox.pending, 1)
	assert.Empty(t, outbox.published)
}

func TestRelayProbesWithSingleEntriesWhileOpen(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.Entry{entry("a"), entry("b"), entry("c")}}
	producer := &fakeProducer{err: errors.New("broker down")}
	relay := NewRelay(outbox, producer, "casetriage.audit", WithBatchSize(50))

	for range 3 {
		_, _ = relay.RelayOnce(context.Background())
	}
	require.True(t, relay.breaker.IsOpen())

	producer.err = nil
	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{50, 50, 50, 1}, outbox.limits)
	assert.False(t, relay.breaker.IsOpen())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(&fakeOutbox{}, &fakeProducer{}, "t", WithInterval(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
