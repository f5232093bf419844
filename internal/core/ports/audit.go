package ports

import (
	"context"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// AuditRepository persists access events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccessEvent) error
	Ping(ctx context.Context) error
}

// AuditRecorder accepts events without blocking the request.
type AuditRecorder interface {
	Record(event domain.AccessEvent)
}
