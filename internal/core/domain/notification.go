package domain

import "time"

// NotificationKind selects how a toast is styled.
type NotificationKind string

const (
	NotificationWelcome NotificationKind = "welcome"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

const (
	// NotificationDuration is how long a toast stays up unless closed.
	NotificationDuration = 8 * time.Second
	// ErrorIndicatorDuration is how long a gate shows its error indicator.
	ErrorIndicatorDuration = 3 * time.Second
)

// Notification is a transient toast queued for the next page render.
type Notification struct {
	ID             string           `json:"id"`
	Kind           NotificationKind `json:"kind"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Roles          []string         `json:"roles,omitempty"`
	DismissAfterMS int64            `json:"dismiss_after_ms"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SaveLoginPrompt is the modal asking whether to persist a Discord login.
type SaveLoginPrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Accept  string `json:"accept"`
	Decline string `json:"decline"`
}

// DefaultSaveLoginPrompt is shown right after a Discord login.
var DefaultSaveLoginPrompt = SaveLoginPrompt{
	Title:   "Save Login Information?",
	Message: "Would you like to save your Discord login information for future visits? This will keep you logged in for 7 days.",
	Accept:  "Yes, Save Login",
	Decline: "No, Thanks",
}

// NotificationFeed is what a page polls for.
type NotificationFeed struct {
	Notifications []Notification   `json:"notifications"`
	Prompt        *SaveLoginPrompt `json:"prompt,omitempty"`
}
