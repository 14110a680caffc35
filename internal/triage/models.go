package triage

import (
	"time"

	"casetriage/internal/cases/models"
)

// Classification is the discretised urgency of a case.
type Classification string

const (
	Critical Classification = "critical"
	Urgent   Classification = "urgent"
	Normal   Classification = "normal"
)

// Rank orders classifications; higher is more urgent.
func (c Classification) Rank() int {
	switch c {
	case Critical:
		return 2
	case Urgent:
		return 1
	default:
		return 0
	}
}

// Breakdown exposes the individual terms that make up a score.
type Breakdown struct {
	Age      float64 `json:"age"`
	Elapsed  float64 `json:"elapsed"`
	Location float64 `json:"location"`
}

// UrgencyScore is derived from a case and an instant. It goes stale as time
// passes and is never persisted.
type UrgencyScore struct {
	Value          float64        `json:"value"`
	Classification Classification `json:"classification"`
	Breakdown      Breakdown      `json:"breakdown"`
}

// Entry pairs a case with its score.
type Entry struct {
	Case  models.Case  `json:"case"`
	Score UrgencyScore `json:"score"`
}

// Unscored identifies a case the scorer rejected and why.
type Unscored struct {
	CaseID models.CaseID `json:"case_id"`
	Reason string        `json:"reason"`
}

// Summary counts cases by classification. Resolved cases are counted apart
// and never contribute to the urgency buckets.
type Summary struct {
	Critical int `json:"critical"`
	Urgent   int `json:"urgent"`
	Normal   int `json:"normal"`
	Resolved int `json:"resolved"`
	Unscored int `json:"unscored"`
}

// Active is the number of scored, unresolved cases.
func (s Summary) Active() int {
	return s.Critical + s.Urgent + s.Normal
}

// View is the ranked, summarised picture of a case set at one instant.
// It is rebuilt whole on every request.
type View struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Scope       string     `json:"scope,omitempty"`
	Level       string     `json:"level,omitempty"`
	Entries     []Entry    `json:"entries"`
	TopAlerts   []Entry    `json:"top_alerts"`
	Summary     Summary    `json:"summary"`
	Unscored    []Unscored `json:"unscored,omitempty"`
}

// Result is a single case scored on demand.
type Result struct {
	Entry
	ScoredAt time.Time `json:"scored_at"`
}
