// Package service orchestrates case retrieval, triage and lifecycle changes.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"casetriage/internal/cases/models"
	"casetriage/internal/jurisdiction"
	"casetriage/internal/triage"
	triagemetrics "casetriage/internal/triage/metrics"
	audit "casetriage/pkg/platform/audit"
	"casetriage/pkg/platform/clock"
)

// CaseStore is the part of the case store the service reads and writes
// directly. Cascade reads go through the Resolver.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id models.CaseID) (*models.Case, error)
	StatusHistory(ctx context.Context, id models.CaseID) ([]models.StatusChange, error)
	SaveViewer(ctx context.Context, v models.Viewer) error
}

// Resolver turns viewers and labels into case sets.
type Resolver interface {
	ResolveScope(ctx context.Context, viewerID string) (jurisdiction.Scope, error)
	ScopeFor(label string) jurisdiction.Scope
	FetchCases(ctx context.Context, scope jurisdiction.Scope) ([]models.Case, jurisdiction.Level, error)
}

// Transitioner validates and applies status changes.
type Transitioner interface {
	Apply(ctx context.Context, id models.CaseID, target models.Status) (*models.Case, models.StatusChange, error)
}

// AuditPublisher records compliance events. A non-nil error means the event
// was not persisted.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the entry point for the HTTP API and the operator CLI.
type Service struct {
	cases       CaseStore
	resolver    Resolver
	transitions Transitioner
	aggregator  *triage.Aggregator

	logger  *slog.Logger
	metrics *triagemetrics.Metrics
	audit   AuditPublisher
	tx      StoreTx
	clock   clock.Clock
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *triagemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// WithTx makes transitions and intake run inside tx so the audit record
// commits or rolls back with the change.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(cases CaseStore, resolver Resolver, transitions Transitioner, aggregator *triage.Aggregator, opts ...Option) (*Service, error) {
	if cases == nil || resolver == nil || transitions == nil || aggregator == nil {
		return nil, errors.New("case store, resolver, transitioner and aggregator are required")
	}
	s := &Service{
		cases:       cases,
		resolver:    resolver,
		transitions: transitions,
		aggregator:  aggregator,
		logger:      slog.New(slog.DiscardHandler),
		tx:          passthroughTx{},
		clock:       clock.System,
		tracer:      otel.Tracer("casetriage/internal/triage/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Policy returns the effective triage policy.
func (s *Service) Policy() triage.Policy {
	return s.aggregator.Scorer().Policy()
}
