package discord

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// rewriteTransport sends every request to the test server.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	target, _ := url.Parse(srv.URL)
	return NewClient(Config{HTTPClient: &http.Client{Transport: rewriteTransport{target: target}}}, zerolog.Nop())
}

func fakeDiscord(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch p := r.URL.Path; {
		case strings.HasSuffix(p, "/users/@me"):
			if auth != "Bearer abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"401: Unauthorized","code":0}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"42","username":"alice","avatar":"a1","verified":true,"premium_type":2}`))
		case strings.HasSuffix(p, "/users/@me/guilds"):
			_, _ = w.Write([]byte(`[{"id":"g1","name":"FSRP"}]`))
		case strings.HasSuffix(p, "/users/@me/guilds/g1/member"):
			_, _ = w.Write([]byte(`{"user":{"id":"42"},"roles":["r1","r2"]}`))
		case strings.HasSuffix(p, "/guilds/g1/roles"):
			_, _ = w.Write([]byte(`[{"id":"r1","name":"Trainer","color":3447003},{"id":"r2","name":"Staff","color":0}]`))
		case strings.HasSuffix(p, "/guilds/g1/members/42"):
			if auth != "Bot bot-token" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"Missing Access","code":50001}`))
				return
			}
			_, _ = w.Write([]byte(`{"user":{"id":"42"},"roles":["r2"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Unknown Member","code":10007}`))
		}
	}
}

func TestClient_CurrentUser(t *testing.T) {
	c := newTestClient(t, fakeDiscord(t))

	p, err := c.CurrentUser(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if p.ID != "42" || p.Username != "alice" || p.Premium() == "" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Verified == nil || !*p.Verified {
		t.Fatalf("expected verified flag")
	}

	if _, err := c.CurrentUser(context.Background(), "wrong"); err == nil {
		t.Fatalf("expected error for rejected token")
	}
}

func TestClient_GuildReads(t *testing.T) {
	c := newTestClient(t, fakeDiscord(t))
	ctx := context.Background()

	guilds, err := c.CurrentUserGuilds(ctx, "abc123")
	if err != nil || len(guilds) != 1 || guilds[0].ID != "g1" {
		t.Fatalf("unexpected guilds %+v (%v)", guilds, err)
	}

	roles, err := c.GuildRoles(ctx, domain.Bearer("abc123"), "g1")
	if err != nil || len(roles) != 2 || roles[0].Color != 3447003 {
		t.Fatalf("unexpected roles %+v (%v)", roles, err)
	}

	self, err := c.CurrentUserGuildMember(ctx, "abc123", "g1")
	if err != nil || self.UserID != "42" || len(self.Roles) != 2 {
		t.Fatalf("unexpected member %+v (%v)", self, err)
	}

	member, err := c.GuildMember(ctx, domain.Bot("bot-token"), "g1", "42")
	if err != nil || len(member.Roles) != 1 || member.Roles[0] != "r2" {
		t.Fatalf("unexpected member %+v (%v)", member, err)
	}

	if _, err := c.GuildMember(ctx, domain.Bearer("abc123"), "g1", "42"); err == nil {
		t.Fatalf("expected bearer member lookup to be refused")
	}
}

func TestClient_UnknownMember(t *testing.T) {
	c := newTestClient(t, fakeDiscord(t))

	_, err := c.CurrentUserGuildMember(context.Background(), "abc123", "other")
	if !errors.Is(err, domain.ErrNotGuildMember) {
		t.Fatalf("expected ErrNotGuildMember, got %v", err)
	}
}
