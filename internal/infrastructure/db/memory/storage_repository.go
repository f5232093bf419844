package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

type area struct {
	values    map[domain.Key]string
	expiresAt time.Time
}

// StorageRepository keeps storage areas in process memory. It is meant for
// development and single-instance deployments; state is lost on restart.
type StorageRepository struct {
	mu            sync.Mutex
	areas         map[domain.Area]map[string]*area
	sessionTTL    time.Duration
	persistentTTL time.Duration
	now           func() time.Time
}

// NewStorageRepository creates an empty in-memory StorageRepository.
func NewStorageRepository(sessionTTL, persistentTTL time.Duration) ports.StorageRepository {
	return &StorageRepository{
		areas: map[domain.Area]map[string]*area{
			domain.AreaSession:    {},
			domain.AreaPersistent: {},
		},
		sessionTTL:    sessionTTL,
		persistentTTL: persistentTTL,
		now:           time.Now,
	}
}

func (r *StorageRepository) ttl(a domain.Area) time.Duration {
	if a == domain.AreaPersistent {
		return r.persistentTTL
	}
	return r.sessionTTL
}

// snapshot must be called with r.mu held.
func (r *StorageRepository) snapshot(a domain.Area, id string) map[domain.Key]string {
	entry, ok := r.areas[a][id]
	if !ok || id == "" {
		return nil
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.areas[a], id)
		return nil
	}
	out := make(map[domain.Key]string, len(entry.values))
	for k, v := range entry.values {
		out[k] = v
	}
	return out
}

func (r *StorageRepository) Load(_ context.Context, sessionID, persistentID string) (*domain.Storage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := domain.NewStorage(
		r.snapshot(domain.AreaSession, sessionID),
		r.snapshot(domain.AreaPersistent, persistentID),
	)
	st.SetID(sessionID)
	return st, nil
}

func (r *StorageRepository) Save(_ context.Context, sessionID, persistentID string, changes domain.Changes) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := map[domain.Area]string{
		domain.AreaSession:    sessionID,
		domain.AreaPersistent: persistentID,
	}
	for a, mutations := range changes {
		id := ids[a]
		if id == "" || len(mutations) == 0 {
			continue
		}
		entry, ok := r.areas[a][id]
		if !ok {
			entry = &area{values: map[domain.Key]string{}}
			r.areas[a][id] = entry
		}
		for k, m := range mutations {
			if m.Delete {
				delete(entry.values, k)
				continue
			}
			entry.values[k] = m.Value
		}
		if ttl := r.ttl(a); ttl > 0 {
			entry.expiresAt = r.now().Add(ttl)
		}
	}
	return nil
}

func (r *StorageRepository) Ping(context.Context) error {
	return nil
}
