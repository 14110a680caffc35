// Package store holds the case record store adapters: in-memory, PostgreSQL,
// Redis and SQLite. All of them satisfy the same read and status-write ports.
package store

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
	normalize "casetriage/pkg/platform/strings"
)

// InMemory keeps cases and viewers in process. Status writes are serialized by
// a single mutex, which makes the check-then-write in UpdateStatus atomic.
type InMemory struct {
	mu      sync.RWMutex
	cases   map[models.CaseID]*models.Case
	viewers map[string]models.Viewer
	history map[models.CaseID][]models.StatusChange
	clock   clock.Clock
}

// Option configures a store.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger *slog.Logger
}

// WithClock sets the clock used to stamp status changes.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger adapters report skipped records to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.System, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewInMemory builds an empty in-memory store.
func NewInMemory(opts ...Option) *InMemory {
	o := buildOptions(opts)
	return &InMemory{
		cases:   make(map[models.CaseID]*models.Case),
		viewers: make(map[string]models.Viewer),
		history: make(map[models.CaseID][]models.StatusChange),
		clock:   o.clock,
	}
}

// Create inserts a new case. An existing id is a conflict.
func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.cases[c.ID] = c.Clone()
	return nil
}

// FindByID returns a copy of the case.
func (s *InMemory) FindByID(_ context.Context, id models.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FetchByScope returns the cases whose jurisdiction matches label after
// normalisation. No matches is an empty slice.
func (s *InMemory) FetchByScope(ctx context.Context, label string) ([]models.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := normalize.NormalizeLabel(label)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Case{}
	for _, c := range s.cases {
		if normalize.NormalizeLabel(c.Jurisdiction) == want {
			out = append(out, *c.Clone())
		}
	}
	sortByID(out)
	return out, nil
}

// FetchAll returns every case.
func (s *InMemory) FetchAll(ctx context.Context) ([]models.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, *c.Clone())
	}
	sortByID(out)
	return out, nil
}

// UpdateStatus runs check against the current record and applies target under
// the store lock. check sees a copy; errors from check are returned as is.
func (s *InMemory) UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if check != nil {
		if err := check(c.Clone()); err != nil {
			return nil, err
		}
	}
	from := c.Status
	c.ApplyStatus(target, s.clock.Now())
	s.history[id] = append(s.history[id], models.StatusChange{
		CaseID: id, From: from, To: c.Status, ChangedAt: c.UpdatedAt,
	})
	return c.Clone(), nil
}

// StatusHistory returns the recorded transitions of a case, oldest first.
func (s *InMemory) StatusHistory(_ context.Context, id models.CaseID) ([]models.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history[id]), nil
}

// SaveViewer registers or replaces a viewer profile.
func (s *InMemory) SaveViewer(_ context.Context, v models.Viewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[v.ID] = v
	return nil
}

// FindViewer returns the viewer profile.
func (s *InMemory) FindViewer(_ context.Context, viewerID string) (*models.Viewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewers[viewerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// Close is a no-op.
func (s *InMemory) Close() error {
	return nil
}

func sortByID(cases []models.Case) {
	slices.SortFunc(cases, func(a, b models.Case) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
}
