package models

import "time"

type SessionEventType string

const (
	EventLoggedIn  SessionEventType = "logged_in"
	EventVerified  SessionEventType = "verified"
	EventLoggedOut SessionEventType = "logged_out"
)

// SessionEvent records a session state transition. The token is never included.
type SessionEvent struct {
	ID         string           `json:"event_id"`
	Type       SessionEventType `json:"event_type"`
	SessionID  string           `json:"session_id"`
	Username   string           `json:"username,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
