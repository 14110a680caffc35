package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
)

// caseStore is what every adapter offers.
type caseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id models.CaseID) (*models.Case, error)
	FetchByScope(ctx context.Context, label string) ([]models.Case, error)
	FetchAll(ctx context.Context) ([]models.Case, error)
	UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error)
	StatusHistory(ctx context.Context, id models.CaseID) ([]models.StatusChange, error)
	SaveViewer(ctx context.Context, v models.Viewer) error
	FindViewer(ctx context.Context, viewerID string) (*models.Viewer, error)
	Close() error
}

var (
	reportedAt = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	changedAt  = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fixedClock = clock.Fixed(changedAt)
)

// contractSuite holds the behaviour every adapter must share. Adapter suites
// embed it and set newStore.
type contractSuite struct {
	suite.Suite
	newStore func() caseStore
	store    caseStore
	ctx      context.Context
}

func (s *contractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *contractSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *contractSuite) seed(id, jurisdiction string, age *int) *models.Case {
	c, err := models.NewCase(models.CaseID(id), reportedAt, age, "Plaza Central", jurisdiction)
	s.Require().NoError(err)
	c.SubjectName = "Subject " + id
	s.Require().NoError(s.store.Create(s.ctx, c))
	return c
}

func (s *contractSuite) TestCreateAndFind() {
	s.Run("round trips every field", func() {
		want := s.seed("case-1", "San Isidro", models.Age(7))

		got, err := s.store.FindByID(s.ctx, "case-1")
		s.Require().NoError(err)
		s.Equal(want.ID, got.ID)
		s.True(want.ReportedAt.Equal(got.ReportedAt))
		s.Equal(want.SubjectName, got.SubjectName)
		s.Require().NotNil(got.SubjectAge)
		s.Equal(7, *got.SubjectAge)
		s.Equal("Plaza Central", got.LastKnownLocation)
		s.Equal(models.StatusMissing, got.Status)
		s.Equal("San Isidro", got.Jurisdiction)
		s.Equal(int64(1), got.Version)
	})

	s.Run("absent age stays absent", func() {
		s.seed("case-2", "", nil)
		got, err := s.store.FindByID(s.ctx, "case-2")
		s.Require().NoError(err)
		s.Nil(got.SubjectAge)
	})

	s.Run("duplicate id is a conflict", func() {
		c, err := models.NewCase("case-1", reportedAt, nil, "", "")
		s.Require().NoError(err)
		s.ErrorIs(s.store.Create(s.ctx, c), sentinel.ErrConflict)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.FindByID(s.ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestFetchByScope() {
	s.seed("b", "San Isidro", nil)
	s.seed("a", "san  isidro", nil)
	s.seed("c", "Tigre", nil)

	s.Run("matches the normalised label, ordered by id", func() {
		got, err := s.store.FetchByScope(s.ctx, " SAN ISIDRO")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(models.CaseID("a"), got[0].ID)
		s.Equal(models.CaseID("b"), got[1].ID)
	})

	s.Run("unknown label is empty, not an error", func() {
		got, err := s.store.FetchByScope(s.ctx, "atlantis")
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("fetch all returns every case", func() {
		got, err := s.store.FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(got, 3)
	})
}

func (s *contractSuite) TestUpdateStatus() {
	s.seed("case-1", "tigre", models.Age(4))

	s.Run("applies target and stamps the change", func() {
		got, err := s.store.UpdateStatus(s.ctx, "case-1", nil, models.StatusFound)
		s.Require().NoError(err)
		s.Equal(models.StatusFound, got.Status)
		s.True(changedAt.Equal(got.UpdatedAt))
		s.Equal(int64(2), got.Version)
		s.True(reportedAt.Equal(got.ReportedAt), "reported_at never changes")

		stored, err := s.store.FindByID(s.ctx, "case-1")
		s.Require().NoError(err)
		s.Equal(models.StatusFound, stored.Status)
	})

	s.Run("check sees the current record and can veto", func() {
		veto := errors.New("vetoed")
		_, err := s.store.UpdateStatus(s.ctx, "case-1", func(c *models.Case) error {
			s.Equal(models.StatusFound, c.Status)
			return veto
		}, models.StatusMissing)
		s.ErrorIs(err, veto)

		stored, err := s.store.FindByID(s.ctx, "case-1")
		s.Require().NoError(err)
		s.Equal(models.StatusFound, stored.Status, "vetoed update leaves the record alone")
	})

	s.Run("history records each applied transition", func() {
		_, err := s.store.UpdateStatus(s.ctx, "case-1", nil, models.StatusMissing)
		s.Require().NoError(err)

		history, err := s.store.StatusHistory(s.ctx, "case-1")
		s.Require().NoError(err)
		s.Require().Len(history, 2)
		s.Equal(models.StatusMissing, history[0].From)
		s.Equal(models.StatusFound, history[0].To)
		s.Equal(models.StatusFound, history[1].From)
		s.Equal(models.StatusMissing, history[1].To)
	})

	s.Run("unknown case is not found", func() {
		_, err := s.store.UpdateStatus(s.ctx, "nope", nil, models.StatusFound)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentTransitions verifies that with a check rejecting no-op moves,
// exactly one of many concurrent missing -> found updates wins.
func (s *contractSuite) TestConcurrentTransitions() {
	s.seed("race", "tigre", nil)

	const goroutines = 10
	alreadyFound := errors.New("already found")
	var wg sync.WaitGroup
	var wins, rejected atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.UpdateStatus(s.ctx, "race", func(c *models.Case) error {
				if c.Status == models.StatusFound {
					return alreadyFound
				}
				return nil
			}, models.StatusFound)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, alreadyFound), errors.Is(err, sentinel.ErrConflict):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), rejected.Load())

	stored, err := s.store.FindByID(s.ctx, "race")
	s.Require().NoError(err)
	s.Equal(int64(2), stored.Version)
}

func (s *contractSuite) TestViewers() {
	s.Require().NoError(s.store.SaveViewer(s.ctx, models.Viewer{ID: "v-1", Jurisdiction: "Tigre"}))

	got, err := s.store.FindViewer(s.ctx, "v-1")
	s.Require().NoError(err)
	s.Equal("Tigre", got.Jurisdiction)

	s.Require().NoError(s.store.SaveViewer(s.ctx, models.Viewer{ID: "v-1", Jurisdiction: "San Isidro"}))
	got, err = s.store.FindViewer(s.ctx, "v-1")
	s.Require().NoError(err)
	s.Equal("San Isidro", got.Jurisdiction)

	_, err = s.store.FindViewer(s.ctx, "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
