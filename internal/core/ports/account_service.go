package ports

import (
	"context"
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// AccountService backs the account dashboard.
type AccountService interface {
	Overview(ctx context.Context, st *domain.Storage, now time.Time) (*domain.AccountOverview, error)
	Refresh(ctx context.Context, st *domain.Storage, now time.Time) (*domain.AccountOverview, error)
	// SetSaveLogin applies the save-login preference; nil toggles it.
	SetSaveLogin(st *domain.Storage, save *bool, now time.Time) (bool, error)
	Logout(st *domain.Storage) string
}
