package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This drives retention and routing on the consumer side.
type EventCategory string

const (
	// CategoryCompliance covers case lifecycle changes. These are written
	// fail-closed: the operation does not commit without its audit record.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions on cases. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string
	Category   EventCategory
	Timestamp  time.Time
	CaseID     string
	Action     string
	FromStatus string
	ToStatus   string
	ActorID    string
	RequestID  string
	Reason     string
}

type AuditEvent string

const (
	EventCaseReported      AuditEvent = "case_reported"
	EventCaseStatusChanged AuditEvent = "case_status_changed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCaseReported:      CategoryCompliance,
	EventCaseStatusChanged: CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations honour a transaction carried
// in the context (see pkg/platform/tx) so the audit row commits or rolls back
// with the change it describes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCase(ctx context.Context, caseID string) ([]Event, error)
}
