package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or regulatory significance:
	// manual verdict overrides, conditional answers recorded on a licensing
	// process, rule catalogue changes. They are persisted synchronously and
	// the calling operation fails if they cannot be written.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for visibility.
	// These can be sampled and are shipped asynchronously.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id,omitempty"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is what the action touched: an entity document (CNPJ/CPF),
	// a CNAE code for rule administration, or a batch id.
	Subject  string `json:"subject"`
	Action   string `json:"action"`
	Decision string `json:"decision,omitempty"` // risk tier after the action, when relevant
	Previous string `json:"previous,omitempty"` // risk tier before the action, when relevant
	Reason   string `json:"reason,omitempty"`
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string `json:"request_id,omitempty"`
	// ActorID identifies the inspector or administrator who acted.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	// Classification events
	EventRiskAnalyzed      AuditEvent = "risk_analyzed"
	EventConditionAnswered AuditEvent = "condition_answered"
	EventRiskOverridden    AuditEvent = "risk_overridden"

	// Rule catalogue events
	EventRuleUpserted AuditEvent = "rule_upserted"
	EventRuleDeleted  AuditEvent = "rule_deleted"
	EventRulesLoaded  AuditEvent = "rules_loaded"

	// Process record events
	EventProcessSaved    AuditEvent = "process_saved"
	EventProcessDeleted  AuditEvent = "process_deleted"
	EventProcessImported AuditEvent = "process_imported"

	// Batch events
	EventBatchCompleted AuditEvent = "batch_completed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventConditionAnswered: CategoryCompliance,
	EventRiskOverridden:    CategoryCompliance,
	EventRuleUpserted:      CategoryCompliance,
	EventRuleDeleted:       CategoryCompliance,
	EventProcessDeleted:    CategoryCompliance,
	EventProcessImported:   CategoryCompliance,

	EventRiskAnalyzed:   CategoryOperations,
	EventRulesLoaded:    CategoryOperations,
	EventProcessSaved:   CategoryOperations,
	EventBatchCompleted: CategoryOperations,
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

// Reader queries persisted audit events. Stores that materialize events implement it.
type Reader interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// -----------------------------------------------------------------------------
// Right-sized event types for the compliance and ops publishers
// -----------------------------------------------------------------------------

// ComplianceEvent captures regulatory-significant actions requiring guaranteed persistence.
// Use with the compliance publisher for fail-closed semantics.
type ComplianceEvent struct {
	Timestamp time.Time  // When the event occurred (set automatically if zero)
	Subject   string     // Entity document or CNAE code (required)
	Action    AuditEvent // The action taken (required)
	Decision  string     // Resulting tier
	Previous  string     // Tier before the action
	Reason    string     // Justification given by the actor
	RequestID string     // Correlation ID for request tracing
	ActorID   string     // Inspector or administrator (required)
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the store-level Event.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    string(e.Action),
		Decision:  e.Decision,
		Previous:  e.Previous,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
	}
}

// OpsEvent captures operational events with minimal overhead.
// Events are fire-and-forget with optional sampling.
type OpsEvent struct {
	Timestamp time.Time  // When the event occurred (set automatically if zero)
	Subject   string     // Entity involved
	Action    AuditEvent // Operational action (e.g., "risk_analyzed")
	Decision  string     // Resulting tier, if any
	RequestID string     // Correlation ID
}

// Category returns CategoryOperations (always).
func (e OpsEvent) Category() EventCategory { return CategoryOperations }

// ToEvent converts to the store-level Event.
func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    string(e.Action),
		Decision:  e.Decision,
		RequestID: e.RequestID,
	}
}
