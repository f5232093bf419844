package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

func TestStorageRepository_SaveAndLoad(t *testing.T) {
	repo := NewStorageRepository(time.Hour, time.Hour).(*StorageRepository)
	ctx := context.Background()

	st, _ := repo.Load(ctx, "s1", "p1")
	st.SetBool(domain.AreaSession, domain.KeySiteAccess, true)
	st.Set(domain.AreaPersistent, domain.KeyDiscordToken, "abc123")
	if err := repo.Save(ctx, "s1", "p1", st.Changes()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, _ := repo.Load(ctx, "s1", "p1")
	if !loaded.Bool(domain.KeySiteAccess) {
		t.Fatalf("expected site flag to persist")
	}
	if v, ok := loaded.Get(domain.AreaPersistent, domain.KeyDiscordToken); !ok || v != "abc123" {
		t.Fatalf("unexpected token: %q", v)
	}

	other, _ := repo.Load(ctx, "s2", "p1")
	if other.Has(domain.KeySiteAccess) {
		t.Fatalf("session areas must not be shared between browsers")
	}
	if !other.Has(domain.KeyDiscordToken) {
		t.Fatalf("persistent area is keyed by its own id")
	}
}

func TestStorageRepository_Expiry(t *testing.T) {
	repo := NewStorageRepository(time.Minute, time.Hour).(*StorageRepository)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	st, _ := repo.Load(ctx, "s1", "p1")
	st.SetBool(domain.AreaSession, domain.KeySiteAccess, true)
	st.SetBool(domain.AreaPersistent, domain.KeyDiscordSaveLogin, true)
	_ = repo.Save(ctx, "s1", "p1", st.Changes())

	now = now.Add(2 * time.Minute)
	loaded, _ := repo.Load(ctx, "s1", "p1")
	if loaded.Has(domain.KeySiteAccess) {
		t.Fatalf("expected idle session area to expire")
	}
	if !loaded.Bool(domain.KeyDiscordSaveLogin) {
		t.Fatalf("persistent area should still be alive")
	}
}
