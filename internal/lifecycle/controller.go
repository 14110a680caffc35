// Package lifecycle governs case status transitions.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/sentinel"
)

// StatusWriter applies a status change atomically per case. The store loads
// the current record, calls check on it and writes target only when check
// returns nil. Errors from check are returned unchanged.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error)
}

// CanTransition reports whether a case may move from one status to another.
// Only missing <-> found moves exist; a legacy in_progress case counts as
// active and may move to either.
func CanTransition(from, to models.Status) error {
	if to != models.StatusMissing && to != models.StatusFound {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid target status", to))
	}
	if !from.IsKnown() {
		return dErrors.New(dErrors.CodeInvalidCaseState,
			fmt.Sprintf("case has invalid status %q", from))
	}
	if from == to {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("case is already %s", to))
	}
	return nil
}

// Controller validates and applies transitions through a StatusWriter.
type Controller struct {
	store StatusWriter
}

// NewController builds a controller over store.
func NewController(store StatusWriter) (*Controller, error) {
	if store == nil {
		return nil, errors.New("status writer is required")
	}
	return &Controller{store: store}, nil
}

// Transition moves the case to target and returns the updated record.
// The rule check runs inside the store's atomic update, so a concurrent
// transition cannot be lost between the read and the write.
func (c *Controller) Transition(ctx context.Context, id models.CaseID, target models.Status) (*models.Case, error) {
	updated, _, err := c.Apply(ctx, id, target)
	return updated, err
}

// Apply is Transition that also reports the change it made, including the
// status the case held when the store locked it.
func (c *Controller) Apply(ctx context.Context, id models.CaseID, target models.Status) (*models.Case, models.StatusChange, error) {
	if id == "" {
		return nil, models.StatusChange{}, dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	if target != models.StatusMissing && target != models.StatusFound {
		return nil, models.StatusChange{}, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid target status", target))
	}
	if err := ctx.Err(); err != nil {
		return nil, models.StatusChange{}, dErrors.Wrap(err, dErrors.CodeCancelled, "transition cancelled")
	}

	var from models.Status
	updated, err := c.store.UpdateStatus(ctx, id, func(current *models.Case) error {
		from = current.Status
		return CanTransition(current.Status, target)
	}, target)
	if err != nil {
		return nil, models.StatusChange{}, translate(ctx, err, id)
	}
	return updated, models.StatusChange{
		CaseID:    updated.ID,
		From:      from,
		To:        updated.Status,
		ChangedAt: updated.UpdatedAt,
	}, nil
}

func translate(ctx context.Context, err error, id models.CaseID) error {
	if _, coded := dErrors.CodeOf(err); coded {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("case %s not found", id))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return dErrors.Wrap(err, dErrors.CodeCancelled, "transition cancelled")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("case %s was modified concurrently", id))
	default:
		return dErrors.Wrap(err, dErrors.CodeRetrieval, "failed to update case status")
	}
}
