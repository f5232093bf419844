package ports

import (
	"context"
	"net/url"
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// CallbackInput is what the callback relay page forwards.
type CallbackInput struct {
	Fragment string
	Query    url.Values
	Origin   string
}

// DiscordAuthService runs the Discord implicit-grant flow.
type DiscordAuthService interface {
	// Begin stores the destination and returns the authorization URL.
	Begin(st *domain.Storage, destination, origin string) (string, error)
	// Complete handles the callback and returns where to send the browser.
	Complete(ctx context.Context, st *domain.Storage, in CallbackInput, now time.Time) (string, error)
	Logout(st *domain.Storage) string
	LoginPage() string
}

// Verifier checks a token against the guild.
type Verifier interface {
	Verify(ctx context.Context, st *domain.Storage, token string) domain.Verification
}
