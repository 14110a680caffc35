package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "casetriage/pkg/domain-errors"
)

// CaseID is the opaque identifier of a missing-person report.
type CaseID string

func (id CaseID) String() string { return string(id) }

// NewCaseID mints an identifier for a freshly reported case.
func NewCaseID() CaseID {
	return CaseID(uuid.NewString())
}

// ParseCaseID rejects blank identifiers; the format is otherwise opaque.
func ParseCaseID(s string) (CaseID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	if len(s) > 64 {
		return "", dErrors.New(dErrors.CodeValidation, "case id must be at most 64 characters")
	}
	return CaseID(s), nil
}

// Status is the lifecycle state of a case.
type Status string

const (
	StatusMissing Status = "missing"
	StatusFound   Status = "found"

	// StatusInProgress is a historical value found in older records. It is
	// readable and scored as active, but nothing ever writes it.
	StatusInProgress Status = "in_progress"
)

// IsKnown reports whether s is a status a stored case may carry.
func (s Status) IsKnown() bool {
	switch s {
	case StatusMissing, StatusFound, StatusInProgress:
		return true
	}
	return false
}

// IsActive reports whether a case in this status is still being searched for.
func (s Status) IsActive() bool {
	return s == StatusMissing || s == StatusInProgress
}

// ParseStatus parses a status string as sent by operators. Only writable
// statuses parse; the legacy value is rejected here on purpose.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusMissing:
		return StatusMissing, nil
	case StatusFound:
		return StatusFound, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidTransition, "status must be one of: missing, found")
}

// Case is a single missing-person report.
//
// Invariants:
//   - ID and ReportedAt never change after creation
//   - SubjectAge, when present, is non-negative
//   - Status moves only along the lifecycle (missing <-> found); in_progress is read-only
//   - Found cases stay retrievable for statistics but never raise urgency alerts
type Case struct {
	ID                CaseID    `json:"id"`
	ReportedAt        time.Time `json:"reported_at"`
	SubjectName       string    `json:"subject_name,omitempty"`
	SubjectAge        *int      `json:"subject_age,omitempty"`
	LastKnownLocation string    `json:"last_known_location,omitempty"`
	Status            Status    `json:"status"`
	Jurisdiction      string    `json:"jurisdiction,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int64     `json:"version"`
}

// NewCase builds a freshly reported case in the missing state.
func NewCase(id CaseID, reportedAt time.Time, age *int, location, jurisdiction string) (*Case, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case id cannot be empty")
	}
	if reportedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reported_at is required")
	}
	if age != nil && *age < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject age cannot be negative")
	}
	return &Case{
		ID:                id,
		ReportedAt:        reportedAt,
		SubjectAge:        age,
		LastKnownLocation: strings.TrimSpace(location),
		Status:            StatusMissing,
		Jurisdiction:      strings.TrimSpace(jurisdiction),
		UpdatedAt:         reportedAt,
		Version:           1,
	}, nil
}

// ApplyStatus moves the case to target and stamps the change. Callers validate
// the transition first (see the lifecycle package).
func (c *Case) ApplyStatus(target Status, now time.Time) {
	c.Status = target
	c.UpdatedAt = now
	c.Version++
}

// Clone returns a deep copy so stores never hand out their internal records.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	cp := *c
	if c.SubjectAge != nil {
		age := *c.SubjectAge
		cp.SubjectAge = &age
	}
	return &cp
}

// Age returns a pointer to v, for building cases with a known subject age.
func Age(v int) *int {
	return &v
}

// StatusChange is one recorded transition of a case.
type StatusChange struct {
	CaseID    CaseID    `json:"case_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
