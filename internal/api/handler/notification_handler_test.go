package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/service"
)

func TestNotificationHandler_ListDrains(t *testing.T) {
	notify := service.NewNotificationService(zerolog.Nop())
	h := NewNotificationHandler(notify)

	c, rec, st := newContext(http.MethodGet, "/api/notifications", "", "")
	notify.Success(st, "Save Login Enabled", "Saved.", time.Now())

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var feed domain.NotificationFeed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(feed.Notifications) != 1 || feed.Notifications[0].Kind != domain.NotificationSuccess {
		t.Fatalf("unexpected feed %+v", feed)
	}
	if st.Has(domain.KeyNotifications) {
		t.Fatalf("queue not drained")
	}
}

func TestNotificationHandler_DismissPrompt(t *testing.T) {
	notify := service.NewNotificationService(zerolog.Nop())
	c, rec, st := newContext(http.MethodDelete, "/api/notifications/prompt", "", "")
	st.Set(domain.AreaSession, domain.KeyDiscordToken, "tok")
	st.SetBool(domain.AreaSession, domain.KeyDiscordJustLoggedIn, true)

	if err := NewNotificationHandler(notify).DismissPrompt(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if st.Bool(domain.KeyDiscordJustLoggedIn) {
		t.Fatalf("prompt still pending")
	}
}
