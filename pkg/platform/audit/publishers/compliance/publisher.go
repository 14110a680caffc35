// Package compliance records case lifecycle events (case_reported,
// case_status_changed) synchronously. A failed write fails the operation that
// emitted it; inside an outbox transaction the case change rolls back with it.
package compliance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "casetriage/pkg/domain-errors"
	audit "casetriage/pkg/platform/audit"
	"casetriage/pkg/platform/clock"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	clock   clock.Clock
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithClock sets the clock used to stamp events without a timestamp.
func WithClock(c clock.Clock) Option {
	return func(p *Publisher) {
		if c != nil {
			p.clock = c
		}
	}
}

// New creates a compliance publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		clock: clock.System,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
// Returns error if persistence fails; the caller MUST fail its operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.CaseID == "" || event.Action == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "audit event needs a case id and an action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "case audit write failed",
				"action", event.Action,
				"case_id", event.CaseID,
				"error", err,
			)
		}
		return errors.Join(ErrPersist, err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}
	return nil
}

// ErrPersist marks a failed audit write.
var ErrPersist = errors.New("compliance audit persistence failed")
