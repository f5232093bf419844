package ports

import (
	"context"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// StorageRepository persists both storage areas of a browser.
type StorageRepository interface {
	// Load reads both areas. Unknown ids yield empty areas.
	Load(ctx context.Context, sessionID, persistentID string) (*domain.Storage, error)
	// Save applies changes to both areas atomically.
	Save(ctx context.Context, sessionID, persistentID string, changes domain.Changes) error
	Ping(ctx context.Context) error
}
