package ports

import (
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// NotificationService queues toasts and the save-login prompt.
type NotificationService interface {
	Push(st *domain.Storage, n domain.Notification, now time.Time)
	Welcome(st *domain.Storage, username string, roles []string, now time.Time)
	Success(st *domain.Storage, title, message string, now time.Time)
	Error(st *domain.Storage, title, message string, now time.Time)
	// Drain returns and clears queued toasts along with the prompt state.
	Drain(st *domain.Storage) domain.NotificationFeed
	DismissPrompt(st *domain.Storage)
}
