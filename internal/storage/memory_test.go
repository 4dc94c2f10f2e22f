package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := testSession("abc")
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Mutating the caller's copy does not affect the stored one.
	s.Snapshot.Currency.Gold = 100

	loaded, err := store.LoadSession(ctx, "abc")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded.Snapshot.Currency.Gold != 3 {
		t.Errorf("Expected stored gold 3, got %d", loaded.Snapshot.Currency.Gold)
	}

	if err := store.DeleteSession(ctx, "abc"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.LoadSession(ctx, "abc"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_Ping(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping success, got %v", err)
	}
	store.SetPingError(errors.New("down"))
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Expected ping error")
	}
}

func TestMemoryStore_TurnLock(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.AcquireTurnLock(ctx, "abc", "a", time.Minute); err != nil {
		t.Fatalf("Failed to acquire: %v", err)
	}
	if err := store.AcquireTurnLock(ctx, "abc", "b", time.Minute); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}
	if err := store.ReleaseTurnLock(ctx, "abc", "b"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := store.AcquireTurnLock(ctx, "abc", "b", time.Minute); !errors.Is(err, ErrLocked) {
		t.Error("Expected non-owner release to keep the lock")
	}

	now = now.Add(2 * time.Minute)
	if err := store.AcquireTurnLock(ctx, "abc", "b", time.Minute); err != nil {
		t.Errorf("Expected expired lock to be reclaimable, got %v", err)
	}
}
