package events

import "time"

const AuditTopic = "hr.audit.v1"

// AuditEvent is emitted for every state-changing operation. The core only
// emits; persistence belongs to the audit service consuming this topic.
type AuditEvent struct {
	EventType  string         `json:"event_type"`
	Action     string         `json:"action"`
	ActorID    string         `json:"actor_id"`
	CompanyID  string         `json:"company_id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
