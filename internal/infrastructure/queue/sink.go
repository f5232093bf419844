package queue

import (
	"context"
	"fmt"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// Deduper reports whether an event was already recorded recently.
type Deduper interface {
	Seen(ctx context.Context, event *domain.AccessEvent) (bool, error)
}

// AuditSink writes dispatched events to the audit repository. Repeated
// denials are dropped when a Deduper is configured.
type AuditSink struct {
	repo  ports.AuditRepository
	dedup Deduper
}

// NewAuditSink creates an AuditSink. dedup may be nil.
func NewAuditSink(repo ports.AuditRepository, dedup Deduper) *AuditSink {
	return &AuditSink{repo: repo, dedup: dedup}
}

func (s *AuditSink) Process(ctx context.Context, event domain.AccessEvent) error {
	if s.dedup != nil && event.Type == domain.EventAccessDenied {
		seen, err := s.dedup.Seen(ctx, &event)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("insert access event: %w", err)
	}
	return nil
}
