package ports

import (
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// AccessEvaluator decides whether a page may render.
type AccessEvaluator interface {
	// Evaluate checks every scope protecting path. It returns the first
	// failing decision, or an allowed decision when all scopes pass.
	Evaluate(st *domain.Storage, path string, now time.Time) domain.Decision
	// Granted reports whether a single scope currently holds.
	Granted(st *domain.Storage, scope domain.ScopeName, now time.Time) bool
	Scope(name domain.ScopeName) (domain.Scope, bool)
}
