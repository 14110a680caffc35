package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newScorer(t *testing.T, p Policy) *Scorer {
	t.Helper()
	s, err := NewScorer(p)
	require.NoError(t, err)
	return s
}

func activeCase(id string, age *int, reportedAgo time.Duration, location string) models.Case {
	return models.Case{
		ID:                models.CaseID(id),
		ReportedAt:        now.Add(-reportedAgo),
		SubjectAge:        age,
		LastKnownLocation: location,
		Status:            models.StatusMissing,
		Jurisdiction:      "centro",
	}
}

// boundaryPolicy has round numbers so threshold edges are easy to hit exactly.
func boundaryPolicy() Policy {
	return Policy{
		AgeBands:         []AgeBand{{MinAge: 0, Weight: 10}},
		UnknownAgeWeight: 10,
		ElapsedBands:     []ElapsedBand{{Within: time.Hour, Weight: 20}},
		BeyondWeight:     0,
		LocationBonus:    20,
		LocationKeywords: []string{"plaza"},
		Thresholds:       Thresholds{Critical: 50, Urgent: 30},
		TopAlerts:        3,
	}
}

func TestScoreScenarios(t *testing.T) {
	s := newScorer(t, DefaultPolicy())

	t.Run("young child, reported an hour ago at a bus terminal is critical", func(t *testing.T) {
		score, err := s.Score(activeCase("c-1", models.Age(4), time.Hour, "Centro bus terminal"), now)
		require.NoError(t, err)

		assert.Equal(t, 40.0, score.Breakdown.Age, "highest age band")
		assert.Equal(t, 40.0, score.Breakdown.Elapsed, "highest time band")
		assert.Equal(t, 20.0, score.Breakdown.Location, "location bonus applied")
		assert.Equal(t, 100.0, score.Value)
		assert.Equal(t, Critical, score.Classification)
	})

	t.Run("adult reported forty days ago with no location is normal", func(t *testing.T) {
		score, err := s.Score(activeCase("c-2", models.Age(35), 40*24*time.Hour, ""), now)
		require.NoError(t, err)

		assert.Equal(t, 5.0, score.Breakdown.Age)
		assert.Equal(t, 5.0, score.Breakdown.Elapsed)
		assert.Zero(t, score.Breakdown.Location)
		assert.Equal(t, Normal, score.Classification)
	})

	t.Run("elderly subject weighs more than an adult", func(t *testing.T) {
		elder, err := s.Score(activeCase("c-3", models.Age(72), 30*time.Hour, ""), now)
		require.NoError(t, err)
		adult, err := s.Score(activeCase("c-4", models.Age(40), 30*time.Hour, ""), now)
		require.NoError(t, err)
		assert.Greater(t, elder.Value, adult.Value)
	})

	t.Run("missing age gets the lowest nonzero weight", func(t *testing.T) {
		score, err := s.Score(activeCase("c-5", nil, 30*time.Hour, ""), now)
		require.NoError(t, err)
		assert.Equal(t, 5.0, score.Breakdown.Age)
	})
}

func TestScoreFoundCaseIsAlwaysNormalZero(t *testing.T) {
	s := newScorer(t, DefaultPolicy())

	inputs := []models.Case{
		activeCase("f-1", models.Age(2), time.Minute, "Plaza Mayor terminal"),
		activeCase("f-2", nil, 400*24*time.Hour, ""),
		activeCase("f-3", models.Age(90), -time.Hour, "mercado"),
	}
	for _, c := range inputs {
		c.Status = models.StatusFound
		score, err := s.Score(c, now)
		require.NoError(t, err)
		assert.Zero(t, score.Value, c.ID)
		assert.Equal(t, Normal, score.Classification, c.ID)
		assert.Equal(t, Breakdown{}, score.Breakdown, c.ID)
	}
}

func TestScoreRejectsInvalidStatus(t *testing.T) {
	s := newScorer(t, DefaultPolicy())

	for _, status := range []models.Status{"", "closed"} {
		c := activeCase("bad", models.Age(4), time.Hour, "")
		c.Status = status
		_, err := s.Score(c, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCaseState))
	}
}

func TestScoreLegacyInProgressIsScoredAsActive(t *testing.T) {
	s := newScorer(t, DefaultPolicy())
	c := activeCase("legacy", models.Age(4), time.Hour, "")
	c.Status = models.StatusInProgress

	score, err := s.Score(c, now)
	require.NoError(t, err)
	assert.Equal(t, 80.0, score.Value)
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newScorer(t, DefaultPolicy())
	c := activeCase("d-1", models.Age(14), 50*time.Hour, "Mercado Central")

	first, err := s.Score(c, now)
	require.NoError(t, err)
	for range 10 {
		again, err := s.Score(c, now)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScoreFutureReportCountsAsJustReported(t *testing.T) {
	s := newScorer(t, DefaultPolicy())
	score, err := s.Score(activeCase("skew", models.Age(35), -10*time.Minute, ""), now)
	require.NoError(t, err)
	assert.Equal(t, 40.0, score.Breakdown.Elapsed)
}

func TestClassifyThresholdsAreInclusive(t *testing.T) {
	s := newScorer(t, boundaryPolicy())

	assert.Equal(t, Critical, s.Classify(50))
	assert.Equal(t, Urgent, s.Classify(49.999))
	assert.Equal(t, Urgent, s.Classify(30))
	assert.Equal(t, Normal, s.Classify(29.999))

	t.Run("summed terms landing exactly on a threshold take the higher band", func(t *testing.T) {
		onCritical, err := s.Score(activeCase("b-1", models.Age(3), 30*time.Minute, "Plaza"), now)
		require.NoError(t, err)
		assert.Equal(t, 50.0, onCritical.Value)
		assert.Equal(t, Critical, onCritical.Classification)

		onUrgent, err := s.Score(activeCase("b-2", models.Age(3), time.Hour, ""), now)
		require.NoError(t, err)
		assert.Equal(t, 30.0, onUrgent.Value)
		assert.Equal(t, Urgent, onUrgent.Classification)
	})
}

func TestClassificationIsMonotoneInWeights(t *testing.T) {
	cases := []models.Case{
		activeCase("m-1", models.Age(4), time.Hour, "terminal"),
		activeCase("m-2", models.Age(35), 30*time.Hour, ""),
		activeCase("m-3", nil, 10*24*time.Hour, "plaza"),
		activeCase("m-4", models.Age(65), 80*time.Hour, "home"),
	}

	bumps := map[string]func(p *Policy){
		"age bands": func(p *Policy) {
			for i := range p.AgeBands {
				p.AgeBands[i].Weight += 15
			}
		},
		"unknown age": func(p *Policy) { p.UnknownAgeWeight += 15 },
		"elapsed bands": func(p *Policy) {
			for i := range p.ElapsedBands {
				p.ElapsedBands[i].Weight += 15
			}
		},
		"beyond":   func(p *Policy) { p.BeyondWeight += 15 },
		"location": func(p *Policy) { p.LocationBonus += 15 },
	}

	base := newScorer(t, DefaultPolicy())
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			p := DefaultPolicy()
			bump(&p)
			raised := newScorer(t, p)
			for _, c := range cases {
				before, err := base.Score(c, now)
				require.NoError(t, err)
				after, err := raised.Score(c, now)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, after.Classification.Rank(), before.Classification.Rank(), c.ID)
			}
		})
	}
}

func TestReopenedCaseRegainsElapsedTerm(t *testing.T) {
	s := newScorer(t, DefaultPolicy())
	c := activeCase("r-1", models.Age(10), 2*time.Hour, "")
	active, err := s.Score(c, now)
	require.NoError(t, err)

	c.Status = models.StatusFound
	closed, err := s.Score(c, now)
	require.NoError(t, err)
	assert.Zero(t, closed.Value)

	c.Status = models.StatusMissing
	reopened, err := s.Score(c, now)
	require.NoError(t, err)
	assert.Equal(t, active, reopened)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := map[string]func(p *Policy){
		"no age bands":            func(p *Policy) { p.AgeBands = nil },
		"first band not at zero":  func(p *Policy) { p.AgeBands[0].MinAge = 1 },
		"unsorted age bands":      func(p *Policy) { p.AgeBands[2].MinAge = 3 },
		"zero age weight":         func(p *Policy) { p.AgeBands[1].Weight = 0 },
		"zero unknown age weight": func(p *Policy) { p.UnknownAgeWeight = 0 },
		"unsorted elapsed bands":  func(p *Policy) { p.ElapsedBands[1].Within = time.Hour },
		"non-positive window":     func(p *Policy) { p.ElapsedBands[0].Within = 0 },
		"negative bonus":          func(p *Policy) { p.LocationBonus = -1 },
		"inverted thresholds":     func(p *Policy) { p.Thresholds = Thresholds{Critical: 10, Urgent: 20} },
		"negative top alerts":     func(p *Policy) { p.TopAlerts = -1 },
		"zero top alerts":         func(p *Policy) { p.TopAlerts = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := DefaultPolicy()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestScorerKeepsPrivateCopyOfPolicy(t *testing.T) {
	p := DefaultPolicy()
	s := newScorer(t, p)

	p.AgeBands[0].Weight = 1000
	p.LocationKeywords[0] = "nowhere"

	score, err := s.Score(activeCase("c", models.Age(2), time.Hour, "Terminal"), now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Value)
}
