package domain

import "time"

// AccessEventType classifies an audit record.
type AccessEventType string

const (
	EventGateAttempt   AccessEventType = "gate_attempt"
	EventGateLogout    AccessEventType = "gate_logout"
	EventAccessDenied  AccessEventType = "access_denied"
	EventDiscordLogin  AccessEventType = "discord_login"
	EventDiscordFailed AccessEventType = "discord_login_failed"
	EventVerification  AccessEventType = "verification"
	EventDiscordLogout AccessEventType = "discord_logout"
	EventSaveLogin     AccessEventType = "save_login"
)

// AccessEvent is one entry of the access audit trail.
type AccessEvent struct {
	ID        string          `json:"id"`
	Type      AccessEventType `json:"type"`
	Scope     ScopeName       `json:"scope,omitempty"`
	Outcome   string          `json:"outcome"`
	StorageID string          `json:"storage_id"`
	Path      string          `json:"path,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
