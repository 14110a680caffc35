package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetriage/internal/cases/models"
	"casetriage/internal/cases/store"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
	"casetriage/pkg/testutil"
)

var (
	reportedAt = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	changedAt  = time.Date(2026, 5, 3, 17, 30, 0, 0, time.UTC)
)

func newStore(t *testing.T, seed ...models.Case) *store.InMemory {
	t.Helper()
	s := store.NewInMemory(store.WithClock(clock.Fixed(changedAt)))
	for _, c := range seed {
		require.NoError(t, s.Create(context.Background(), &c))
	}
	return s
}

func missingCase(id string) models.Case {
	c, _ := models.NewCase(models.CaseID(id), reportedAt, models.Age(9), "Plaza Once", "Balvanera")
	return *c
}

func newController(t *testing.T, s StatusWriter) *Controller {
	t.Helper()
	c, err := NewController(s)
	require.NoError(t, err)
	return c
}

func requireCode(t *testing.T, err error, code dErrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.Status
		to   models.Status
		code dErrors.Code
	}{
		{name: "missing to found", from: models.StatusMissing, to: models.StatusFound},
		{name: "found to missing", from: models.StatusFound, to: models.StatusMissing},
		{name: "legacy in_progress to found", from: models.StatusInProgress, to: models.StatusFound},
		{name: "legacy in_progress to missing", from: models.StatusInProgress, to: models.StatusMissing},
		{name: "no-op", from: models.StatusMissing, to: models.StatusMissing, code: dErrors.CodeInvalidTransition},
		{name: "in_progress is never a target", from: models.StatusMissing, to: models.StatusInProgress, code: dErrors.CodeInvalidTransition},
		{name: "unknown target", from: models.StatusMissing, to: "closed", code: dErrors.CodeInvalidTransition},
		{name: "unknown current status", from: "archived", to: models.StatusFound, code: dErrors.CodeInvalidCaseState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			requireCode(t, err, tt.code)
		})
	}
}

func TestNewControllerRequiresStore(t *testing.T) {
	_, err := NewController(nil)
	assert.Error(t, err)
}

func TestTransition(t *testing.T) {
	testutil.Given(t, "a case reported missing", func(t *testing.T) {
		s := newStore(t, missingCase("c-1"))
		ctrl := newController(t, s)
		ctx := context.Background()

		testutil.When(t, "it is marked found and then reopened", func(t *testing.T) {
			found, err := ctrl.Transition(ctx, "c-1", models.StatusFound)
			require.NoError(t, err)
			reopened, err := ctrl.Transition(ctx, "c-1", models.StatusMissing)
			require.NoError(t, err)

			testutil.Then(t, "each step applies and reported_at never moves", func(t *testing.T) {
				assert.Equal(t, models.StatusFound, found.Status)
				assert.Equal(t, models.StatusMissing, reopened.Status)
				assert.Equal(t, reportedAt, reopened.ReportedAt)
				assert.Equal(t, changedAt, reopened.UpdatedAt)
				assert.Equal(t, int64(3), reopened.Version)
			})

			testutil.Then(t, "both changes are in the history", func(t *testing.T) {
				history, err := s.StatusHistory(ctx, "c-1")
				require.NoError(t, err)
				require.Len(t, history, 2)
				assert.Equal(t, models.StatusMissing, history[0].From)
				assert.Equal(t, models.StatusFound, history[0].To)
				assert.Equal(t, models.StatusMissing, history[1].To)
			})
		})

		testutil.When(t, "it is set to the status it already has", func(t *testing.T) {
			_, err := ctrl.Transition(ctx, "c-1", models.StatusMissing)

			testutil.Then(t, "the no-op is rejected and nothing is written", func(t *testing.T) {
				requireCode(t, err, dErrors.CodeInvalidTransition)
				c, err := s.FindByID(ctx, "c-1")
				require.NoError(t, err)
				assert.Equal(t, int64(3), c.Version)
			})
		})

		testutil.When(t, "the legacy status is requested", func(t *testing.T) {
			_, err := ctrl.Transition(ctx, "c-1", models.StatusInProgress)

			testutil.Then(t, "it is rejected", func(t *testing.T) {
				requireCode(t, err, dErrors.CodeInvalidTransition)
			})
		})
	})

	testutil.Given(t, "a legacy in_progress case", func(t *testing.T) {
		legacy := missingCase("c-legacy")
		legacy.Status = models.StatusInProgress
		ctrl := newController(t, newStore(t, legacy))

		testutil.Then(t, "it can be marked found", func(t *testing.T) {
			updated, err := ctrl.Transition(context.Background(), "c-legacy", models.StatusFound)
			require.NoError(t, err)
			assert.Equal(t, models.StatusFound, updated.Status)
		})
	})

	testutil.Given(t, "an unknown case", func(t *testing.T) {
		ctrl := newController(t, newStore(t))

		testutil.Then(t, "the transition is not found", func(t *testing.T) {
			_, err := ctrl.Transition(context.Background(), "ghost", models.StatusFound)
			requireCode(t, err, dErrors.CodeNotFound)
		})
	})

	testutil.Given(t, "a blank id", func(t *testing.T) {
		ctrl := newController(t, newStore(t))

		testutil.Then(t, "the request is invalid", func(t *testing.T) {
			_, err := ctrl.Transition(context.Background(), "", models.StatusFound)
			requireCode(t, err, dErrors.CodeValidation)
		})
	})

	testutil.Given(t, "a cancelled context", func(t *testing.T) {
		s := newStore(t, missingCase("c-1"))
		ctrl := newController(t, s)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		testutil.Then(t, "nothing is applied", func(t *testing.T) {
			_, err := ctrl.Transition(ctx, "c-1", models.StatusFound)
			requireCode(t, err, dErrors.CodeCancelled)
			c, err := s.FindByID(context.Background(), "c-1")
			require.NoError(t, err)
			assert.Equal(t, models.StatusMissing, c.Status)
		})
	})
}

type failingWriter struct{ err error }

func (f failingWriter) UpdateStatus(context.Context, models.CaseID, func(*models.Case) error, models.Status) (*models.Case, error) {
	return nil, f.err
}

func TestTransitionTranslatesStoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{name: "not found", err: sentinel.ErrNotFound, code: dErrors.CodeNotFound},
		{name: "optimistic conflict", err: sentinel.ErrConflict, code: dErrors.CodeConflict},
		{name: "backend failure", err: errors.New("connection reset"), code: dErrors.CodeRetrieval},
		{name: "deadline", err: context.DeadlineExceeded, code: dErrors.CodeCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newController(t, failingWriter{err: tt.err})
			_, err := ctrl.Transition(context.Background(), "c-1", models.StatusFound)
			requireCode(t, err, tt.code)
		})
	}
}

func TestConcurrentTransitionsApplyOnce(t *testing.T) {
	s := newStore(t, missingCase("c-1"))
	ctrl := newController(t, s)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		applied  int
		rejected int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ctrl.Transition(context.Background(), "c-1", models.StatusFound)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				applied++
			} else if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, workers-1, rejected)
	history, err := s.StatusHistory(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestApplyReportsLockedStatus(t *testing.T) {
	legacy := missingCase("c-legacy")
	legacy.Status = models.StatusInProgress
	ctrl := newController(t, newStore(t, legacy))

	updated, change, err := ctrl.Apply(context.Background(), "c-legacy", models.StatusFound)
	require.NoError(t, err)
	assert.Equal(t, models.StatusChange{
		CaseID:    "c-legacy",
		From:      models.StatusInProgress,
		To:        models.StatusFound,
		ChangedAt: changedAt,
	}, change)
	assert.Equal(t, models.StatusFound, updated.Status)
}
