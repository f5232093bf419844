package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// maxQueuedNotifications bounds the session-area queue.
const maxQueuedNotifications = 10

type notificationService struct {
	log zerolog.Logger
}

// NewNotificationService returns a NotificationService storing toasts in the
// session area.
func NewNotificationService(log zerolog.Logger) ports.NotificationService {
	return &notificationService{log: log}
}

func (s *notificationService) load(st *domain.Storage) []domain.Notification {
	var queue []domain.Notification
	if _, err := st.JSON(domain.AreaSession, domain.KeyNotifications, &queue); err != nil {
		s.log.Warn().Err(err).Msg("notification queue unreadable, resetting")
		return nil
	}
	return queue
}

func (s *notificationService) Push(st *domain.Storage, n domain.Notification, now time.Time) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.DismissAfterMS == 0 {
		n.DismissAfterMS = domain.NotificationDuration.Milliseconds()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	queue := append(s.load(st), n)
	if len(queue) > maxQueuedNotifications {
		queue = queue[len(queue)-maxQueuedNotifications:]
	}
	if err := st.SetJSON(domain.AreaSession, domain.KeyNotifications, queue); err != nil {
		s.log.Error().Err(err).Msg("queue notification")
	}
}

// Welcome greets a user after login. The message lists the role names when
// there are any.
func (s *notificationService) Welcome(st *domain.Storage, username string, roles []string, now time.Time) {
	msg := "You have successfully logged in with Discord."
	if len(roles) > 0 {
		msg = "Your roles: " + strings.Join(roles, ", ")
	}
	s.Push(st, domain.Notification{
		Kind:    domain.NotificationWelcome,
		Title:   "Welcome, " + username + "!",
		Message: msg,
		Roles:   roles,
	}, now)
}

func (s *notificationService) Success(st *domain.Storage, title, message string, now time.Time) {
	s.Push(st, domain.Notification{Kind: domain.NotificationSuccess, Title: title, Message: message}, now)
}

func (s *notificationService) Error(st *domain.Storage, title, message string, now time.Time) {
	s.Push(st, domain.Notification{Kind: domain.NotificationError, Title: title, Message: message}, now)
}

// Drain hands the queue to the page exactly once. The prompt stays pending
// until it is answered or dismissed.
func (s *notificationService) Drain(st *domain.Storage) domain.NotificationFeed {
	feed := domain.NotificationFeed{Notifications: s.load(st)}
	if feed.Notifications == nil {
		feed.Notifications = []domain.Notification{}
	}
	st.Remove(domain.AreaSession, domain.KeyNotifications)

	if st.Bool(domain.KeyDiscordJustLoggedIn) && st.Has(domain.KeyDiscordToken) {
		prompt := domain.DefaultSaveLoginPrompt
		feed.Prompt = &prompt
	}
	return feed
}

// DismissPrompt answers the save-login prompt with "no": the preference is
// turned off and the token stays in the session area.
func (s *notificationService) DismissPrompt(st *domain.Storage) {
	st.SetBool(domain.AreaPersistent, domain.KeyDiscordSaveLogin, false)
	st.Move(domain.AreaPersistent, domain.AreaSession, domain.KeyDiscordToken, domain.KeyDiscordTimestamp)
	st.Clear(domain.KeyDiscordJustLoggedIn)
}
