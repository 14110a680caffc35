package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"casetriage/internal/app"
	"casetriage/internal/platform/config"
	"casetriage/internal/platform/httpserver"
	"casetriage/internal/platform/kafka"
	"casetriage/internal/platform/logger"
	httpmetrics "casetriage/internal/platform/metrics"
	triagehandler "casetriage/internal/triage/handler"
	"casetriage/pkg/platform/audit/worker"
	"casetriage/pkg/platform/httputil"
	"casetriage/pkg/platform/middleware/requestid"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	engine, err := config.LoadEngine(cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("load engine config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(ctx, cfg, engine, log, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("closing stores failed", "error", err)
		}
	}()

	router := newRouter(a, log, reg)
	srv := httpserver.New(cfg.Addr, router,
		httpserver.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.IdleTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	relay, closeRelay, err := newRelay(gctx, cfg, a, log)
	if err != nil {
		return err
	}
	defer closeRelay()
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting casetriage", "addr", cfg.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func newRouter(a *app.App, log *slog.Logger, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(httpmetrics.New(reg).Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Ready(r.Context()); err != nil {
			log.WarnContext(r.Context(), "readiness check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	triagehandler.New(a.Service, log).Register(r)
	return r
}

// newRelay starts the outbox relay only when the Postgres outbox and Kafka
// brokers are both configured.
func newRelay(ctx context.Context, cfg config.Server, a *app.App, log *slog.Logger) (*worker.Relay, func(), error) {
	noop := func() {}
	brokers := kafka.ParseBrokers(cfg.Kafka.Brokers)
	if a.Outbox == nil || len(brokers) == 0 {
		if len(brokers) > 0 {
			log.Warn("kafka brokers set but the store has no outbox; relay disabled", "store", cfg.Store)
		}
		return nil, noop, nil
	}

	client, err := kafka.NewClient(ctx, kafka.Config{Brokers: brokers, Topic: cfg.Kafka.Topic}, log)
	if err != nil {
		return nil, noop, err
	}
	relay := worker.NewRelay(a.Outbox, client, cfg.Kafka.Topic,
		worker.WithBatchSize(cfg.Kafka.RelayBatch),
		worker.WithInterval(cfg.Kafka.RelayInterval),
		worker.WithLogger(log),
	)
	return relay, client.Close, nil
}
