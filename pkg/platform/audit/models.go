package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers issuance decisions and credential creation,
	// which must be retained.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers routine activity such as submissions and
	// notification handling.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the entity acted on, usually a request id.
	Subject  string
	Action   string
	Decision string
	Reason   string
	// RequestID is the HTTP correlation id, not the mint request id.
	RequestID string
	// ActorID is the wallet or admin address that performed the action.
	ActorID string
}

type AuditEvent string

const (
	EventMintRequestSubmitted AuditEvent = "mint_request_submitted"
	EventMintRequestDecided   AuditEvent = "mint_request_decided"
	EventCertificateMinted    AuditEvent = "certificate_minted"
	EventMintFailed           AuditEvent = "certificate_mint_failed"
	EventMintReconciled       AuditEvent = "certificate_mint_reconciled"
	EventNotificationSeen     AuditEvent = "notification_seen"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventMintRequestDecided: CategoryCompliance,
	EventCertificateMinted:  CategoryCompliance,
	EventMintFailed:         CategoryCompliance,
	EventMintReconciled:     CategoryCompliance,

	EventMintRequestSubmitted: CategoryOperations,
	EventNotificationSeen:     CategoryOperations,
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
