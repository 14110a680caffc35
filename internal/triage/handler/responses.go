package handler

import (
	"time"

	"casetriage/internal/cases/models"
	"casetriage/internal/triage"
)

// CaseResponse is the public shape of a case.
type CaseResponse struct {
	ID                string    `json:"id"`
	ReportedAt        time.Time `json:"reported_at"`
	SubjectName       string    `json:"subject_name,omitempty"`
	SubjectAge        *int      `json:"subject_age,omitempty"`
	LastKnownLocation string    `json:"last_known_location,omitempty"`
	Status            string    `json:"status"`
	Jurisdiction      string    `json:"jurisdiction,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ScoreResponse is an urgency score with its terms.
type ScoreResponse struct {
	Value          float64          `json:"value"`
	Classification string           `json:"classification"`
	Breakdown      triage.Breakdown `json:"breakdown"`
}

// EntryResponse is one ranked row of a triage view.
type EntryResponse struct {
	Case  CaseResponse  `json:"case"`
	Score ScoreResponse `json:"score"`
}

// ViewResponse is the HTTP response for the triage endpoints.
type ViewResponse struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Scope       string            `json:"scope"`
	Level       string            `json:"level"`
	Entries     []EntryResponse   `json:"entries"`
	TopAlerts   []EntryResponse   `json:"top_alerts"`
	Summary     triage.Summary    `json:"summary"`
	Unscored    []triage.Unscored `json:"unscored"`
}

// ScoreCaseResponse is the HTTP response for GET /cases/{id}/score.
type ScoreCaseResponse struct {
	EntryResponse
	ScoredAt time.Time `json:"scored_at"`
}

// StatusChangeResponse is one entry of a case's status history.
type StatusChangeResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// HistoryResponse is the HTTP response for GET /cases/{id}/history.
type HistoryResponse struct {
	CaseID  string                 `json:"case_id"`
	Changes []StatusChangeResponse `json:"changes"`
}

func fromCase(c *models.Case) CaseResponse {
	return CaseResponse{
		ID:                string(c.ID),
		ReportedAt:        c.ReportedAt,
		SubjectName:       c.SubjectName,
		SubjectAge:        c.SubjectAge,
		LastKnownLocation: c.LastKnownLocation,
		Status:            string(c.Status),
		Jurisdiction:      c.Jurisdiction,
		UpdatedAt:         c.UpdatedAt,
	}
}

func fromEntry(e triage.Entry) EntryResponse {
	return EntryResponse{
		Case: fromCase(&e.Case),
		Score: ScoreResponse{
			Value:          e.Score.Value,
			Classification: string(e.Score.Classification),
			Breakdown:      e.Score.Breakdown,
		},
	}
}

func fromEntries(entries []triage.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = fromEntry(e)
	}
	return out
}

// FromView converts a triage view to its HTTP response.
func FromView(view *triage.View) *ViewResponse {
	unscored := view.Unscored
	if unscored == nil {
		unscored = []triage.Unscored{}
	}
	return &ViewResponse{
		GeneratedAt: view.GeneratedAt,
		Scope:       view.Scope,
		Level:       view.Level,
		Entries:     fromEntries(view.Entries),
		TopAlerts:   fromEntries(view.TopAlerts),
		Summary:     view.Summary,
		Unscored:    unscored,
	}
}

// FromResult converts a single-case score to its HTTP response.
func FromResult(result *triage.Result) *ScoreCaseResponse {
	return &ScoreCaseResponse{
		EntryResponse: fromEntry(result.Entry),
		ScoredAt:      result.ScoredAt,
	}
}

// FromHistory converts a status history to its HTTP response.
func FromHistory(id models.CaseID, changes []models.StatusChange) *HistoryResponse {
	out := make([]StatusChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = StatusChangeResponse{From: string(c.From), To: string(c.To), ChangedAt: c.ChangedAt}
	}
	return &HistoryResponse{CaseID: string(id), Changes: out}
}
