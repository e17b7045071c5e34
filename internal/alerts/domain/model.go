package domain

import "time"

// Severity levels for alerts and notifications.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Alert is the single active transient message for a session. Pushing a new
// alert replaces the previous one; auto-dismiss is a store TTL.
type Alert struct {
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a durable per-session notification with a read flag.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
