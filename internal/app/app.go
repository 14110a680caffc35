// Package app wires stores, the audit trail and the triage service from
// configuration. Both the HTTP server and the operator CLI start here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"casetriage/internal/cases/store"
	"casetriage/internal/jurisdiction"
	"casetriage/internal/lifecycle"
	"casetriage/internal/platform/config"
	platformredis "casetriage/internal/platform/redis"
	"casetriage/internal/triage"
	triagemetrics "casetriage/internal/triage/metrics"
	"casetriage/internal/triage/service"
	audit "casetriage/pkg/platform/audit"
	"casetriage/pkg/platform/audit/publishers/compliance"
	auditmemory "casetriage/pkg/platform/audit/store/memory"
	auditpostgres "casetriage/pkg/platform/audit/store/postgres"
	"casetriage/pkg/platform/sentinel"
)

// CaseStore is everything the engine needs from a case backend.
type CaseStore interface {
	service.CaseStore
	jurisdiction.CaseSource
	jurisdiction.ViewerDirectory
	lifecycle.StatusWriter
	io.Closer
}

// App holds the wired components. Close releases the backends.
type App struct {
	Cases   CaseStore
	Audit   audit.Store
	Outbox  *auditpostgres.Store
	Service *service.Service
	Policy  triage.Policy

	closers []io.Closer
	checks  map[string]func(context.Context) error
}

// Build connects the backend named by cfg.Store and wires the service over it.
// Metrics are registered on reg.
func Build(ctx context.Context, cfg config.Server, engine config.Engine, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{Policy: engine.Policy, checks: map[string]func(context.Context) error{}}
	var tx service.StoreTx

	switch cfg.Store {
	case config.StoreMemory:
		a.Cases = store.NewInMemory()
		a.Audit = auditmemory.NewInMemoryStore()

	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		cases := store.NewPostgres(db)
		outbox := auditpostgres.New(db)
		if err := ensureSchemas(ctx, cases, outbox); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.Cases, a.Audit, a.Outbox = cases, outbox, outbox
		a.checks["postgres"] = db.PingContext
		tx = service.NewSQLTx(db)

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("redis store selected but REDIS_URL is empty")
		}
		a.Cases = store.NewRedis(client.Client)
		a.Audit = auditmemory.NewInMemoryStore()
		a.closers = append(a.closers, client)
		a.checks["redis"] = client.Ping

	case config.StoreSQLite:
		cases, err := store.OpenSQLite(cfg.SQLitePath, store.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		a.Cases = cases
		a.Audit = auditmemory.NewInMemoryStore()
		a.checks["sqlite"] = cases.Ping

	default:
		return nil, fmt.Errorf("unknown store %q (want memory, postgres, redis or sqlite)", cfg.Store)
	}
	a.closers = append([]io.Closer{a.Cases}, a.closers...)

	svc, err := newService(a.Cases, a.Audit, engine, logger, reg, tx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = svc

	logger.InfoContext(ctx, "case store ready", "store", cfg.Store)
	return a, nil
}

func newService(cases CaseStore, events audit.Store, engine config.Engine, logger *slog.Logger, reg prometheus.Registerer, tx service.StoreTx) (*service.Service, error) {
	resolver, err := jurisdiction.New(cases, cases, engine.Jurisdiction, jurisdiction.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	controller, err := lifecycle.NewController(cases)
	if err != nil {
		return nil, err
	}
	scorer, err := triage.NewScorer(engine.Policy)
	if err != nil {
		return nil, err
	}
	publisher := compliance.New(events,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(triagemetrics.New(reg)),
		service.WithAuditPublisher(publisher),
	}
	if tx != nil {
		opts = append(opts, service.WithTx(tx))
	}
	return service.New(cases, resolver, controller, triage.NewAggregator(scorer), opts...)
}

func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("postgres store selected but DATABASE_URL is empty")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

type schemaOwner interface {
	EnsureSchema(ctx context.Context) error
}

func ensureSchemas(ctx context.Context, owners ...schemaOwner) error {
	for _, o := range owners {
		if err := o.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Ready pings every connected backend. The in-memory store is always ready.
func (a *App) Ready(ctx context.Context) error {
	var errs []error
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s %w: %w", name, sentinel.ErrUnavailable, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every backend connection in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
