package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance,
	// such as a pending registration holding personal data being created.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring, such as
	// clients submitting transitions the step graph never offered.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine wizard activity. These can be sampled
	// or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject is the onboarding client id or pending registration id.
	Subject string `json:"subject,omitempty"`
	// SubjectHash is a SHA-256 hash of the email address, for traceability
	// without storing raw PII in the audit trail.
	SubjectHash string `json:"subjectHash,omitempty"`
	Path        string `json:"path,omitempty"`
	Decision    string `json:"decision,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	ClientIP    string `json:"clientIp,omitempty"`
	DeviceName  string `json:"deviceName,omitempty"`
}

type AuditEvent string

const (
	// Wizard events
	EventEntryChosen         AuditEvent = "onboarding_entry_chosen"
	EventStepCompleted       AuditEvent = "onboarding_step_completed"
	EventNeutralExited       AuditEvent = "onboarding_neutral_exited"
	EventDraftAbandoned      AuditEvent = "onboarding_draft_abandoned"
	EventTransitionRejected  AuditEvent = "onboarding_transition_rejected"
	EventRegistrationInvalid AuditEvent = "pending_registration_rejected"

	// Registration events
	EventPendingRegistrationCreated AuditEvent = "pending_registration_created"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventPendingRegistrationCreated: CategoryCompliance,

	EventTransitionRejected:  CategorySecurity,
	EventRegistrationInvalid: CategorySecurity,

	EventEntryChosen:    CategoryOperations,
	EventStepCompleted:  CategoryOperations,
	EventNeutralExited:  CategoryOperations,
	EventDraftAbandoned: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// HashIdentifier returns the hex SHA-256 of a normalized identifier such as
// an email address.
func HashIdentifier(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
