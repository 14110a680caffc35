package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"casetriage/internal/cases/models"
	"casetriage/internal/jurisdiction"
	"casetriage/internal/triage"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/sentinel"
	"casetriage/pkg/requestcontext"
)

// Triage builds the view for the viewer's declared jurisdiction.
func (s *Service) Triage(ctx context.Context, viewerID string) (*triage.View, error) {
	ctx, span := s.tracer.Start(ctx, "triage.Triage", trace.WithAttributes(attribute.String("viewer_id", viewerID)))
	defer span.End()

	scope, err := s.resolver.ResolveScope(ctx, viewerID)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to resolve viewer scope", err, "viewer_id", viewerID)
	}
	return s.build(ctx, span, "viewer", scope)
}

// TriageScope builds the view starting from an explicit label. A blank label
// goes straight to the unscoped levels.
func (s *Service) TriageScope(ctx context.Context, label string) (*triage.View, error) {
	ctx, span := s.tracer.Start(ctx, "triage.TriageScope", trace.WithAttributes(attribute.String("scope", label)))
	defer span.End()

	return s.build(ctx, span, "scope", s.resolver.ScopeFor(label))
}

func (s *Service) build(ctx context.Context, span trace.Span, entry string, scope jurisdiction.Scope) (*triage.View, error) {
	start := time.Now()
	cases, level, err := s.resolver.FetchCases(ctx, scope)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to fetch cases", err, "scope", scope.Label)
	}

	view := s.aggregator.Aggregate(cases, s.clock.Now())
	view.Scope = scope.Label
	view.Level = string(level)

	for _, u := range view.Unscored {
		s.logger.WarnContext(ctx, "case left out of triage view",
			"case_id", u.CaseID,
			"reason", u.Reason,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	span.SetAttributes(
		attribute.String("level", view.Level),
		attribute.Int("entries", len(view.Entries)),
		attribute.Int("unscored", view.Summary.Unscored),
	)
	s.metrics.ObserveTriageLatency(entry, time.Since(start))
	s.metrics.IncrementCascadeLevel(view.Level)
	s.metrics.AddClassified(string(triage.Critical), view.Summary.Critical)
	s.metrics.AddClassified(string(triage.Urgent), view.Summary.Urgent)
	s.metrics.AddClassified(string(triage.Normal), view.Summary.Normal)
	s.metrics.AddUnscored(view.Summary.Unscored)
	return view, nil
}

// Overview builds one view per viewer concurrently. Duplicate ids are built
// once. The first failure cancels the remaining builds and is returned.
func (s *Service) Overview(ctx context.Context, viewerIDs []string) (map[string]*triage.View, error) {
	if len(viewerIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one viewer id is required")
	}
	ids := slices.Clone(viewerIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var mu sync.Mutex
	views := make(map[string]*triage.View, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			view, err := s.Triage(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			views[id] = view
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// ScoreCase scores one case at the current instant.
func (s *Service) ScoreCase(ctx context.Context, id models.CaseID) (*triage.Result, error) {
	ctx, span := s.tracer.Start(ctx, "triage.ScoreCase", trace.WithAttributes(attribute.String("case_id", string(id))))
	defer span.End()

	start := time.Now()
	c, err := s.findCase(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to load case", err, "case_id", id)
	}

	now := s.clock.Now()
	score, err := s.aggregator.Scorer().Score(*c, now)
	if err != nil {
		return nil, s.fail(ctx, span, "case could not be scored", err, "case_id", id)
	}

	s.metrics.ObserveTriageLatency("score", time.Since(start))
	return &triage.Result{
		Entry:    triage.Entry{Case: *c, Score: score},
		ScoredAt: now,
	}, nil
}

func (s *Service) findCase(ctx context.Context, id models.CaseID) (*models.Case, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(ctx, err, fmt.Sprintf("case %s not found", id), "failed to load case")
	}
	return c, nil
}

// fail logs err with the request id, marks the span and returns err.
func (s *Service) fail(ctx context.Context, span trace.Span, msg string, err error, attrs ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	if dErrors.HasCode(err, dErrors.CodeRetrieval) || dErrors.HasCode(err, dErrors.CodeInternal) {
		s.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		s.logger.WarnContext(ctx, msg, attrs...)
	}
	return err
}

// wrapStoreErr translates store sentinels into coded errors.
func wrapStoreErr(ctx context.Context, err error, notFound, failed string) error {
	if _, coded := dErrors.CodeOf(err); coded {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, failed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return dErrors.Wrap(err, dErrors.CodeCancelled, "request cancelled")
	default:
		return dErrors.Wrap(err, dErrors.CodeRetrieval, failed)
	}
}
