// Package jurisdiction maps a viewer to the scope of cases they triage and
// fetches that scope through an ordered fallback cascade.
package jurisdiction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/sentinel"
	"casetriage/pkg/platform/strings"
)

// CaseSource is the read side of the case store the cascade queries.
type CaseSource interface {
	// FetchByScope returns the cases whose jurisdiction equals label.
	// No matches is an empty slice or sentinel.ErrNotFound.
	FetchByScope(ctx context.Context, label string) ([]models.Case, error)
	FetchAll(ctx context.Context) ([]models.Case, error)
}

// ViewerDirectory looks up the jurisdiction a viewer declared in their profile.
type ViewerDirectory interface {
	FindViewer(ctx context.Context, viewerID string) (*models.Viewer, error)
}

// Scope is the requested label plus the levels to try, in order.
type Scope struct {
	Label  string
	Levels []Level
}

// Resolver resolves viewers to scopes and runs the cascade.
type Resolver struct {
	cases   CaseSource
	viewers ViewerDirectory
	cascade []Level
	regions regionIndex
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to trace cascade fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New builds a resolver. viewers may be nil when only label scopes are used.
func New(cases CaseSource, viewers ViewerDirectory, cfg Config, opts ...Option) (*Resolver, error) {
	if cases == nil {
		return nil, errors.New("case source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		cases:   cases,
		viewers: viewers,
		cascade: slices.Clone(cfg.Cascade),
		regions: buildRegionIndex(cfg.Regions),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cascade returns the configured level order.
func (r *Resolver) Cascade() []Level {
	return slices.Clone(r.cascade)
}

// ResolveScope returns the scope for the viewer's declared jurisdiction.
// A viewer with no jurisdiction gets an empty label, which the cascade skips
// straight past to the unscoped levels.
func (r *Resolver) ResolveScope(ctx context.Context, viewerID string) (Scope, error) {
	if viewerID == "" {
		return Scope{}, dErrors.New(dErrors.CodeValidation, "viewer id is required")
	}
	if r.viewers == nil {
		return Scope{}, dErrors.New(dErrors.CodeInternal, "no viewer directory configured")
	}
	viewer, err := r.viewers.FindViewer(ctx, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return Scope{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("viewer %s not found", viewerID))
		case isContextErr(ctx, err):
			return Scope{}, dErrors.Wrap(err, dErrors.CodeCancelled, "viewer lookup cancelled")
		default:
			return Scope{}, dErrors.Wrap(err, dErrors.CodeRetrieval, "failed to look up viewer")
		}
	}
	return r.ScopeFor(viewer.Jurisdiction), nil
}

// ScopeFor builds the scope for an explicit label.
func (r *Resolver) ScopeFor(label string) Scope {
	return Scope{Label: strings.NormalizeLabel(label), Levels: r.Cascade()}
}

// FetchCases walks scope.Levels and returns the first non-empty case set and
// the level that produced it.
//
// A level falls through to the next when it has nothing to query, returns no
// cases, or the store reports sentinel.ErrNotFound. Any other store error
// stops the cascade and is returned as a retrieval error. When every level is
// empty the result is an empty slice, a blank level and a nil error.
func (r *Resolver) FetchCases(ctx context.Context, scope Scope) ([]models.Case, Level, error) {
	label := strings.NormalizeLabel(scope.Label)
	for _, level := range scope.Levels {
		if err := ctx.Err(); err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeCancelled, "case fetch cancelled")
		}

		cases, err := r.fetchLevel(ctx, level, label)
		if err != nil {
			return nil, "", err
		}
		if len(cases) > 0 {
			return cases, level, nil
		}
		r.logger.DebugContext(ctx, "jurisdiction level empty, falling back",
			"level", level,
			"label", label,
		)
	}
	return []models.Case{}, "", nil
}

func (r *Resolver) fetchLevel(ctx context.Context, level Level, label string) ([]models.Case, error) {
	switch level {
	case LevelExact:
		if label == "" {
			return nil, nil
		}
		return r.fetchScope(ctx, label)
	case LevelRegion:
		if label == "" {
			return nil, nil
		}
		return r.fetchRegion(ctx, r.regions.labelsFor(label))
	case LevelAll:
		cases, err := r.cases.FetchAll(ctx)
		return cases, r.translate(ctx, err, "all cases")
	default:
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unknown cascade level %q", level))
	}
}

func (r *Resolver) fetchScope(ctx context.Context, label string) ([]models.Case, error) {
	cases, err := r.cases.FetchByScope(ctx, label)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	return cases, r.translate(ctx, err, fmt.Sprintf("scope %q", label))
}

// fetchRegion queries each label in turn, keeping the first copy of any case
// returned by more than one label.
func (r *Resolver) fetchRegion(ctx context.Context, labels []string) ([]models.Case, error) {
	var out []models.Case
	seen := map[models.CaseID]struct{}{}
	for _, label := range labels {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCancelled, "case fetch cancelled")
		}
		cases, err := r.fetchScope(ctx, label)
		if err != nil {
			return nil, err
		}
		for _, c := range cases {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Resolver) translate(ctx context.Context, err error, what string) error {
	if err == nil {
		return nil
	}
	if isContextErr(ctx, err) {
		return dErrors.Wrap(err, dErrors.CodeCancelled, "fetch of "+what+" cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeRetrieval, "failed to fetch "+what)
}

func isContextErr(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}
