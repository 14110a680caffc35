package handler

import (
	"strings"

	"casetriage/internal/cases/models"
	dErrors "casetriage/pkg/domain-errors"
)

const maxTextLen = 200

// ReportCaseRequest is the HTTP request body for POST /cases.
type ReportCaseRequest struct {
	SubjectName       string `json:"subject_name"`
	SubjectAge        *int   `json:"subject_age"`
	LastKnownLocation string `json:"last_known_location"`
	Jurisdiction      string `json:"jurisdiction"`
	Actor             string `json:"actor"`
}

// Validate implements httputil.Validatable.
func (r *ReportCaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.SubjectName) > maxTextLen || len(r.LastKnownLocation) > maxTextLen || len(r.Jurisdiction) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "text fields must be at most 200 characters")
	}
	if r.SubjectAge != nil && (*r.SubjectAge < 0 || *r.SubjectAge > 150) {
		return dErrors.New(dErrors.CodeValidation, "subject_age must be between 0 and 150")
	}
	r.SubjectName = strings.TrimSpace(r.SubjectName)
	r.LastKnownLocation = strings.TrimSpace(r.LastKnownLocation)
	r.Jurisdiction = strings.TrimSpace(r.Jurisdiction)
	r.Actor = strings.TrimSpace(r.Actor)
	return nil
}

// TransitionRequest is the HTTP request body for POST /cases/{id}/status.
type TransitionRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`

	parsedStatus models.Status
}

// Validate implements httputil.Validatable. An unknown or read-only status is
// an invalid transition, not a malformed request.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	r.Actor = strings.TrimSpace(r.Actor)
	return nil
}

// ParsedStatus returns the validated target status.
func (r *TransitionRequest) ParsedStatus() models.Status {
	return r.parsedStatus
}

// RegisterViewerRequest is the HTTP request body for PUT /viewers/{id}.
type RegisterViewerRequest struct {
	Jurisdiction string `json:"jurisdiction"`
}

// Validate implements httputil.Validatable.
func (r *RegisterViewerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Jurisdiction) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "jurisdiction must be at most 200 characters")
	}
	r.Jurisdiction = strings.TrimSpace(r.Jurisdiction)
	return nil
}
