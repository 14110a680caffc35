// Package worker relays outbox entries to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"casetriage/pkg/platform/audit/store/postgres"
	"casetriage/pkg/platform/circuit"
)

// Outbox is the read-and-mark side of the outbox table.
type Outbox interface {
	ProcessPending(ctx context.Context, limit int, publish func(context.Context, []postgres.Entry) error) (int, error)
}

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes pending entries to a topic. Entries
// are marked published only after the broker acknowledged every record of the
// batch, so delivery is at least once.
type Relay struct {
	outbox    Outbox
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay builds a relay publishing to topic.
func NewRelay(outbox Outbox, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
		breaker:   circuit.New("audit-outbox-relay", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. While the breaker is open the relay
// probes with single-entry batches at a slower pace.
func (r *Relay) Run(ctx context.Context) error {
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay batch failed", "error", err)
		}

		wait := r.interval
		switch {
		case r.breaker.IsOpen():
			wait = r.interval * 10
		case n == r.batchSize:
			wait = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	limit := r.batchSize
	if r.breaker.IsOpen() {
		limit = 1
	}

	n, err := r.outbox.ProcessPending(ctx, limit, r.publish)
	if err != nil {
		if _, change := r.breaker.RecordFailure(); change.Opened {
			r.logger.ErrorContext(ctx, "outbox relay circuit opened", "breaker", r.breaker.Name(), "error", err)
		}
		return 0, err
	}
	if n > 0 {
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "outbox relay circuit closed", "breaker", r.breaker.Name())
		}
	}
	return n, nil
}

func (r *Relay) publish(ctx context.Context, entries []postgres.Entry) error {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(e.EventType)},
				{Key: "outbox_id", Value: []byte(e.ID.String())},
			},
			Timestamp: e.CreatedAt,
		})
	}
	return r.producer.ProduceSync(ctx, records...).FirstErr()
}
