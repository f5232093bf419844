package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

const (
	sessionKeyPrefix    = "portal:storage:session:"
	persistentKeyPrefix = "portal:storage:persistent:"
)

// StorageRepository keeps each storage area in a Redis hash.
// Key format: portal:storage:<area>:<id>
type StorageRepository struct {
	client        *redis.Client
	sessionTTL    time.Duration
	persistentTTL time.Duration
}

// NewStorageRepository creates a StorageRepository. Hashes expire after the
// given idle TTLs; every save refreshes them.
func NewStorageRepository(client *redis.Client, sessionTTL, persistentTTL time.Duration) ports.StorageRepository {
	return &StorageRepository{client: client, sessionTTL: sessionTTL, persistentTTL: persistentTTL}
}

func (r *StorageRepository) key(area domain.Area, sessionID, persistentID string) (string, time.Duration) {
	switch area {
	case domain.AreaSession:
		if sessionID == "" {
			return "", 0
		}
		return sessionKeyPrefix + sessionID, r.sessionTTL
	case domain.AreaPersistent:
		if persistentID == "" {
			return "", 0
		}
		return persistentKeyPrefix + persistentID, r.persistentTTL
	}
	return "", 0
}

// Load reads both areas in one round trip. Unknown ids load as empty areas.
func (r *StorageRepository) Load(ctx context.Context, sessionID, persistentID string) (*domain.Storage, error) {
	pipe := r.client.Pipeline()
	var session, persistent *redis.MapStringStringCmd
	if k, _ := r.key(domain.AreaSession, sessionID, persistentID); k != "" {
		session = pipe.HGetAll(ctx, k)
	}
	if k, _ := r.key(domain.AreaPersistent, sessionID, persistentID); k != "" {
		persistent = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load storage: %w: %v", domain.ErrStorageUnavailable, err)
	}

	st := domain.NewStorage(toKeys(session), toKeys(persistent))
	st.SetID(sessionID)
	return st, nil
}

// Save applies the mutations of both areas in a single MULTI/EXEC so a key
// moved between areas is never visible in both or neither.
func (r *StorageRepository) Save(ctx context.Context, sessionID, persistentID string, changes domain.Changes) error {
	if changes.Empty() {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for area, mutations := range changes {
			key, ttl := r.key(area, sessionID, persistentID)
			if key == "" || len(mutations) == 0 {
				continue
			}
			var set []any
			var del []string
			for k, m := range mutations {
				if m.Delete {
					del = append(del, string(k))
					continue
				}
				set = append(set, string(k), m.Value)
			}
			if len(set) > 0 {
				pipe.HSet(ctx, key, set...)
			}
			if len(del) > 0 {
				pipe.HDel(ctx, key, del...)
			}
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save storage: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *StorageRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func toKeys(cmd *redis.MapStringStringCmd) map[domain.Key]string {
	if cmd == nil {
		return nil
	}
	raw := cmd.Val()
	out := make(map[domain.Key]string, len(raw))
	for k, v := range raw {
		out[domain.Key(k)] = v
	}
	return out
}
