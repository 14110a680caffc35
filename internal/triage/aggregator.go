package triage

import (
	"cmp"
	"slices"
	"time"

	"casetriage/internal/cases/models"
)

// Aggregator builds a View from a case set. It performs no I/O and keeps no
// state between calls, so views are always recomputed rather than cached.
type Aggregator struct {
	scorer    *Scorer
	topAlerts int
}

// NewAggregator builds an aggregator whose alert list is bounded by the scorer's policy.
func NewAggregator(scorer *Scorer) *Aggregator {
	return &Aggregator{scorer: scorer, topAlerts: scorer.policy.TopAlerts}
}

// Scorer exposes the scorer the aggregator ranks with.
func (a *Aggregator) Scorer() *Scorer {
	return a.scorer
}

// Aggregate scores, filters, ranks and summarises cases at now.
// Steps:
//  1. Score every case; a case that fails is reported as unscored, the batch goes on
//  2. Found cases only bump the resolved count
//  3. Sort the rest: classification desc, reported_at desc, id asc
//  4. Count per classification and cut the alert list
func (a *Aggregator) Aggregate(cases []models.Case, now time.Time) *View {
	view := &View{
		GeneratedAt: now,
		Entries:     make([]Entry, 0, len(cases)),
		TopAlerts:   []Entry{},
	}

	for _, c := range cases {
		score, err := a.scorer.Score(c, now)
		if err != nil {
			view.Unscored = append(view.Unscored, Unscored{CaseID: c.ID, Reason: err.Error()})
			view.Summary.Unscored++
			continue
		}
		if c.Status == models.StatusFound {
			view.Summary.Resolved++
			continue
		}
		view.Entries = append(view.Entries, Entry{Case: c, Score: score})
	}

	slices.SortFunc(view.Entries, compareEntries)

	for _, e := range view.Entries {
		switch e.Score.Classification {
		case Critical:
			view.Summary.Critical++
		case Urgent:
			view.Summary.Urgent++
		default:
			view.Summary.Normal++
		}
		if len(view.TopAlerts) < a.topAlerts && e.Score.Classification != Normal {
			view.TopAlerts = append(view.TopAlerts, e)
		}
	}

	return view
}

func compareEntries(x, y Entry) int {
	if c := cmp.Compare(y.Score.Classification.Rank(), x.Score.Classification.Rank()); c != 0 {
		return c
	}
	if c := y.Case.ReportedAt.Compare(x.Case.ReportedAt); c != 0 {
		return c
	}
	return cmp.Compare(x.Case.ID, y.Case.ID)
}
