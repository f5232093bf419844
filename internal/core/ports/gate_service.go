package ports

import (
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// GateSubmission is a passcode typed into a gate page.
type GateSubmission struct {
	Scope       domain.ScopeName
	Passcode    string
	Destination string
}

// GateResult tells the transport where to go next.
type GateResult struct {
	Redirect string
	// DismissAfter is how long the error indicator stays visible on failure.
	DismissAfter time.Duration
}

// GateService runs the passcode gates.
type GateService interface {
	Submit(st *domain.Storage, in GateSubmission, now time.Time) (GateResult, error)
	Logout(st *domain.Storage, scope domain.ScopeName) (string, error)
	// GatePage returns the gate page of a scope.
	GatePage(scope domain.ScopeName) (string, error)
}
