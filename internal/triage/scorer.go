package triage

import (
	"fmt"
	"time"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/strings"
)

// Scorer turns a case snapshot into an UrgencyScore. It holds only the policy
// it was built with, so Score is a pure function and safe for concurrent use.
type Scorer struct {
	policy Policy
}

// NewScorer validates the policy and keeps a private copy of it.
func NewScorer(policy Policy) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: policy.normalized()}, nil
}

// Policy returns a copy of the effective policy.
func (s *Scorer) Policy() Policy {
	return s.policy.normalized()
}

// Score computes the urgency of c at now.
// Rule order:
//  1. Unknown status: reject (InvalidCaseState)
//  2. Found: zero, normal, nothing else inspected
//  3. Otherwise: age + elapsed + location terms, then classify
func (s *Scorer) Score(c models.Case, now time.Time) (UrgencyScore, error) {
	if !c.Status.IsKnown() {
		return UrgencyScore{}, dErrors.New(dErrors.CodeInvalidCaseState,
			fmt.Sprintf("case %s has invalid status %q", c.ID, c.Status))
	}
	if c.Status == models.StatusFound {
		return UrgencyScore{Classification: Normal}, nil
	}

	b := Breakdown{
		Age:      s.ageTerm(c.SubjectAge),
		Elapsed:  s.elapsedTerm(now.Sub(c.ReportedAt)),
		Location: s.locationTerm(c.LastKnownLocation),
	}
	value := b.Age + b.Elapsed + b.Location
	return UrgencyScore{
		Value:          value,
		Classification: s.Classify(value),
		Breakdown:      b,
	}, nil
}

// Classify maps a score value onto a classification. Thresholds are inclusive:
// a value equal to a threshold lands in the higher band.
func (s *Scorer) Classify(value float64) Classification {
	switch {
	case value >= s.policy.Thresholds.Critical:
		return Critical
	case value >= s.policy.Thresholds.Urgent:
		return Urgent
	default:
		return Normal
	}
}

// ageTerm picks the band with the greatest MinAge not above age. An absent or
// corrupt (negative) age is the least specific signal, not a high-risk one.
func (s *Scorer) ageTerm(age *int) float64 {
	if age == nil || *age < 0 {
		return s.policy.UnknownAgeWeight
	}
	weight := s.policy.AgeBands[0].Weight
	for _, band := range s.policy.AgeBands {
		if *age < band.MinAge {
			break
		}
		weight = band.Weight
	}
	return weight
}

// elapsedTerm picks the first window containing elapsed. Reports stamped in the
// future (clock skew between devices) count as just reported.
func (s *Scorer) elapsedTerm(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	for _, band := range s.policy.ElapsedBands {
		if elapsed <= band.Within {
			return band.Weight
		}
	}
	return s.policy.BeyondWeight
}

func (s *Scorer) locationTerm(location string) float64 {
	if strings.ContainsAny(location, s.policy.LocationKeywords) {
		return s.policy.LocationBonus
	}
	return 0
}
