package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fsrp/document-portal/internal/core/domain"
)

const dedupWindow = time.Minute

// EventDeduper suppresses repeated audit events, such as a browser reloading
// a page it is denied, within a one-minute window.
// Key format: audit:dedup:<storage_id>:<type>:<scope>:<path>:<unix_minute>
type EventDeduper struct {
	client *redis.Client
}

// NewEventDeduper creates an EventDeduper wrapping the given Redis client.
func NewEventDeduper(client *redis.Client) *EventDeduper {
	return &EventDeduper{client: client}
}

// Seen reports whether an identical event was already recorded in the
// current window and marks it otherwise. SETNX keeps the check atomic.
func (d *EventDeduper) Seen(ctx context.Context, event *domain.AccessEvent) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(event), "1", dedupWindow).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return !ok, nil
}

func (d *EventDeduper) key(e *domain.AccessEvent) string {
	return fmt.Sprintf("audit:dedup:%s:%s:%s:%s:%d",
		e.StorageID, e.Type, e.Scope, e.Path, e.Timestamp.Truncate(dedupWindow).Unix())
}
