package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

func newTestAccount(api *stubDiscordAPI) (ports.AccountService, ports.NotificationService) {
	notify := NewNotificationService(testLog)
	verifier := NewVerifier(api, VerifierConfig{Discord: testDiscordConfig()}, nil, testLog)
	grant := domain.DiscordGrant{
		SaveLoginTimeout: domain.DiscordSaveLoginTimeout,
		SessionTimeout:   domain.DiscordSessionTimeout,
	}
	return NewAccountService(testDiscordConfig(), grant, verifier, notify, nil, testLog), notify
}

func TestAccountService_OverviewRequiresLogin(t *testing.T) {
	svc, _ := newTestAccount(newStubDiscordAPI())
	if _, err := svc.Overview(context.Background(), emptyStorage(), testNow); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAccountService_OverviewLive(t *testing.T) {
	api := newStubDiscordAPI()
	api.user = &domain.Profile{ID: "user-1", Username: "alice", Avatar: "hash", PremiumType: 2}
	svc, _ := newTestAccount(api)
	st := emptyStorage()
	discordLogin(st, domain.AreaSession, testNow.Add(-10*time.Minute))

	ov, err := svc.Overview(context.Background(), st, testNow)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if !ov.Live || len(ov.Warnings) != 0 {
		t.Fatalf("expected live overview, got %+v", ov)
	}
	if !ov.Status.Active || !ov.Status.ExpiresAt.Equal(testNow.Add(50*time.Minute)) {
		t.Fatalf("unexpected status: %+v", ov.Status)
	}
	if len(ov.Roles) != 1 || ov.Roles[0].Class != "trainer" || ov.Roles[0].Color != "#3498db" {
		t.Fatalf("unexpected roles: %+v", ov.Roles)
	}
	if !ov.Permissions[0].Access || ov.Permissions[1].Access {
		t.Fatalf("unexpected permissions: %+v", ov.Permissions)
	}
	if ov.Permissions[1].URL != "discord_login.html?destination=SWPD.html" {
		t.Fatalf("unexpected locked URL: %s", ov.Permissions[1].URL)
	}
}

func TestAccountService_OverviewCached(t *testing.T) {
	api := newStubDiscordAPI()
	api.userErr = errDiscordDown
	svc, _ := newTestAccount(api)
	st := emptyStorage()
	discordLogin(st, domain.AreaSession, testNow)
	st.Set(domain.AreaSession, domain.KeyDiscordUsername, "alice")

	ov, err := svc.Overview(context.Background(), st, testNow)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if ov.Live || len(ov.Warnings) != 2 {
		t.Fatalf("expected cached overview with warnings, got %+v", ov)
	}
	if ov.Profile.Username != "alice" || ov.Profile.ID != "Unknown" {
		t.Fatalf("unexpected cached profile: %+v", ov.Profile)
	}
	if len(ov.Roles) != 3 {
		t.Fatalf("expected member, trainer and staff badges, got %+v", ov.Roles)
	}
}

func TestAccountService_SaveLoginMovesToken(t *testing.T) {
	svc, notify := newTestAccount(newStubDiscordAPI())
	st := emptyStorage()
	discordLogin(st, domain.AreaSession, testNow)
	st.SetBool(domain.AreaSession, domain.KeyDiscordJustLoggedIn, true)

	save, err := svc.SetSaveLogin(st, boolPtr(true), testNow)
	if err != nil || !save {
		t.Fatalf("SetSaveLogin returned %v, %v", save, err)
	}
	if _, ok := st.Get(domain.AreaPersistent, domain.KeyDiscordToken); !ok {
		t.Fatalf("expected token in persistent area")
	}
	if _, ok := st.Get(domain.AreaPersistent, domain.KeyDiscordTimestamp); !ok {
		t.Fatalf("expected timestamp in persistent area")
	}
	if _, ok := st.Get(domain.AreaSession, domain.KeyDiscordToken); ok {
		t.Fatalf("token must live in exactly one area")
	}
	if st.Has(domain.KeyDiscordJustLoggedIn) {
		t.Fatalf("answering the prompt clears it")
	}

	save, _ = svc.SetSaveLogin(st, nil, testNow)
	if save {
		t.Fatalf("nil should toggle the preference off")
	}
	if _, ok := st.Get(domain.AreaSession, domain.KeyDiscordToken); !ok {
		t.Fatalf("expected token back in session area")
	}
	if n := len(notify.Drain(st).Notifications); n != 2 {
		t.Fatalf("expected two success toasts, got %d", n)
	}
}

func TestAccountService_RefreshGreets(t *testing.T) {
	svc, notify := newTestAccount(newStubDiscordAPI())
	st := emptyStorage()
	discordLogin(st, domain.AreaSession, testNow)

	if _, err := svc.Refresh(context.Background(), st, testNow); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	feed := notify.Drain(st)
	if len(feed.Notifications) != 1 || feed.Notifications[0].Roles[0] != "Trainer" {
		t.Fatalf("unexpected notifications: %+v", feed.Notifications)
	}
}

func TestAccountService_Logout(t *testing.T) {
	svc, _ := newTestAccount(newStubDiscordAPI())
	st := emptyStorage()
	discordLogin(st, domain.AreaPersistent, testNow)
	st.Set(domain.AreaPersistent, domain.KeyDiscordUsername, "alice")

	if dest := svc.Logout(st); dest != "/discord_login.html" {
		t.Fatalf("unexpected destination: %s", dest)
	}
	if st.Has(domain.KeyDiscordToken) || st.Has(domain.KeyDiscordUsername) {
		t.Fatalf("expected discord keys cleared")
	}
}
