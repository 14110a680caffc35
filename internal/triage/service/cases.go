package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
	audit "casetriage/pkg/platform/audit"
	"casetriage/pkg/requestcontext"
)

// ReportRequest is the intake of a new case.
type ReportRequest struct {
	SubjectName       string
	SubjectAge        *int
	LastKnownLocation string
	Jurisdiction      string
	Actor             string
}

// Report registers a new missing-person case reported now.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*models.Case, error) {
	ctx, span := s.tracer.Start(ctx, "triage.Report")
	defer span.End()

	if req.SubjectAge != nil && *req.SubjectAge < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "subject age cannot be negative")
	}
	c, err := models.NewCase(models.NewCaseID(), s.clock.Now(), req.SubjectAge, req.LastKnownLocation, req.Jurisdiction)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	c.SubjectName = strings.TrimSpace(req.SubjectName)
	span.SetAttributes(attribute.String("case_id", string(c.ID)))

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.cases.Create(txCtx, c); err != nil {
			return wrapStoreErr(txCtx, err, "", "failed to create case")
		}
		return s.emit(txCtx, audit.Event{
			CaseID:   string(c.ID),
			Action:   string(audit.EventCaseReported),
			ToStatus: string(c.Status),
			ActorID:  actorOf(ctx, req.Actor),
		})
	})
	if err != nil {
		return nil, s.fail(ctx, span, "failed to report case", err, "case_id", c.ID)
	}

	s.logger.InfoContext(ctx, "case reported",
		"case_id", c.ID,
		"jurisdiction", c.Jurisdiction,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncrementCasesReported()
	return c, nil
}

// Transition moves a case to target on behalf of actor. The status change
// and its audit record are one unit of work: when the audit write fails the
// change is rolled back where the store is transactional.
func (s *Service) Transition(ctx context.Context, id models.CaseID, target models.Status, actor string) (*models.Case, error) {
	ctx, span := s.tracer.Start(ctx, "triage.Transition", trace.WithAttributes(
		attribute.String("case_id", string(id)),
		attribute.String("target", string(target)),
	))
	defer span.End()

	var updated *models.Case
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, change, err := s.transitions.Apply(txCtx, id, target)
		if err != nil {
			return err
		}
		if err := s.emit(txCtx, audit.Event{
			CaseID:     string(change.CaseID),
			Action:     string(audit.EventCaseStatusChanged),
			FromStatus: string(change.From),
			ToStatus:   string(change.To),
			ActorID:    actorOf(ctx, actor),
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		s.metrics.IncrementTransition(string(target), outcomeOf(err))
		return nil, s.fail(ctx, span, "status transition rejected", err, "case_id", id, "target", target)
	}

	s.logger.InfoContext(ctx, "case status changed",
		"case_id", updated.ID,
		"status", updated.Status,
		"actor", actorOf(ctx, actor),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncrementTransition(string(target), "applied")
	return updated, nil
}

// History lists the recorded status changes of a case, oldest first.
func (s *Service) History(ctx context.Context, id models.CaseID) ([]models.StatusChange, error) {
	if _, err := s.findCase(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.cases.StatusHistory(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(ctx, err, fmt.Sprintf("case %s not found", id), "failed to load status history")
	}
	if history == nil {
		history = []models.StatusChange{}
	}
	return history, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// actorOf prefers an explicit actor over the identity forwarded with the request.
func actorOf(ctx context.Context, actor string) string {
	if actor = strings.TrimSpace(actor); actor != "" {
		return actor
	}
	return requestcontext.Actor(ctx)
}

func outcomeOf(err error) string {
	if code, ok := dErrors.CodeOf(err); ok {
		return string(code)
	}
	return "error"
}


// RegisterViewer creates or replaces the jurisdiction profile of a viewer.
// A blank jurisdiction is allowed: such a viewer falls through to the
// unscoped level of the cascade.
func (s *Service) RegisterViewer(ctx context.Context, viewerID, jurisdictionLabel string) (*models.Viewer, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "viewer id is required")
	}
	v := models.Viewer{ID: viewerID, Jurisdiction: strings.TrimSpace(jurisdictionLabel)}
	if err := s.cases.SaveViewer(ctx, v); err != nil {
		return nil, wrapStoreErr(ctx, err, "", "failed to save viewer")
	}
	s.logger.InfoContext(ctx, "viewer registered",
		"viewer_id", v.ID,
		"jurisdiction", v.Jurisdiction,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &v, nil
}
