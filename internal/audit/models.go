package audit

import "time"

// Event is an immutable, append-only auth audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - user_id is required; workspace_id only applies to authorization events.
// - Capture is best-effort; auth flows must never block on audit failures.
//
// Storage recommendation (Postgres):
// - Table auth_audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the auth lifecycle category of the record.
	Type EventType `json:"type" db:"type"`

	// UserID is the subject of the event.
	UserID string `json:"user_id" db:"user_id"`
	// WorkspaceID is set for authorization events (permission denials).
	WorkspaceID string `json:"workspace_id,omitempty" db:"workspace_id"`
	// SessionID is set for session lifecycle events.
	SessionID string `json:"session_id,omitempty" db:"session_id"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string `json:"user_agent,omitempty" db:"user_agent"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeSessionIssued    EventType = "session_issued"
	EventTypeSessionRotated   EventType = "session_rotated"
	EventTypeSessionRevoked   EventType = "session_revoked"
	EventTypePermissionDenied EventType = "permission_denied"
)
