package chat

import (
	"context"
	"testing"
	"time"
)

func TestGuestStoreRoundTrip(t *testing.T) {
	kv := newMemKV()
	store := NewGuestStore(kv, 7*24*time.Hour)

	sess := &Session{ID: "norse_thor", MythologyID: "norse", CreatedAt: time.Now()}
	store.Save(context.Background(), "dev-1", sess)

	got := store.Get(context.Background(), "dev-1", "norse_thor")
	if got == nil || got.MythologyID != "norse" {
		t.Fatalf("round trip failed: %+v", got)
	}

	// replacing by id keeps a single entry
	sess.Messages = []Message{{ID: "m1", Role: RoleUser, Content: "hej", Timestamp: time.Now()}}
	store.Save(context.Background(), "dev-1", sess)
	all := store.ListAll(context.Background(), "dev-1")
	if len(all) != 1 || len(all[0].Messages) != 1 {
		t.Fatalf("save must replace, got %d sessions", len(all))
	}
}

func TestGuestStoreExpirySweep(t *testing.T) {
	kv := newMemKV()
	store := NewGuestStore(kv, 7*24*time.Hour)

	now := time.Now()
	store.Save(context.Background(), "dev-1", &Session{ID: "old", MythologyID: "norse", CreatedAt: now.Add(-8 * 24 * time.Hour)})
	store.Save(context.Background(), "dev-1", &Session{ID: "fresh", MythologyID: "norse", CreatedAt: now})

	all := store.ListAll(context.Background(), "dev-1")
	if len(all) != 1 || all[0].ID != "fresh" {
		t.Fatalf("expired entry must be swept, got %+v", all)
	}

	// the sweep rewrote the stored list, the expired entry is gone for good
	if got := store.Get(context.Background(), "dev-1", "old"); got != nil {
		t.Fatalf("expired session still readable")
	}
}

func TestGuestStoreMissingDevice(t *testing.T) {
	kv := newMemKV()
	store := NewGuestStore(kv, 7*24*time.Hour)

	store.Save(context.Background(), "", &Session{ID: "x", MythologyID: "norse", CreatedAt: time.Now()})
	if len(kv.data) != 0 {
		t.Fatalf("save without a device id must be a no-op")
	}
	if got := store.ListAll(context.Background(), ""); got != nil {
		t.Fatalf("list without a device id must be empty")
	}
}

func TestGuestStoreDeleteAndClear(t *testing.T) {
	kv := newMemKV()
	store := NewGuestStore(kv, 7*24*time.Hour)

	store.Save(context.Background(), "dev-1", &Session{ID: "a", MythologyID: "norse", CreatedAt: time.Now()})
	store.Save(context.Background(), "dev-1", &Session{ID: "b", MythologyID: "greek", CreatedAt: time.Now()})

	store.Delete(context.Background(), "dev-1", "a")
	if all := store.ListAll(context.Background(), "dev-1"); len(all) != 1 || all[0].ID != "b" {
		t.Fatalf("delete removed the wrong entry: %+v", all)
	}

	store.ClearAll(context.Background(), "dev-1")
	if all := store.ListAll(context.Background(), "dev-1"); len(all) != 0 {
		t.Fatalf("clear must drop everything, got %d", len(all))
	}
	if len(kv.data) != 0 {
		t.Fatalf("clear must delete the key")
	}
}
