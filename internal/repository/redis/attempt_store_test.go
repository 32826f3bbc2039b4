package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestAttemptStoreRoundTrip(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts", TTL: 48 * time.Hour})

	ctx := context.Background()
	lockout := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	record := domain.AttemptRecord{
		Attempts:      4,
		LastAttemptAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		LockoutUntil:  &lockout,
	}

	if err := store.Put(ctx, "login:198.51.100.7", record); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, ok, err := store.Get(ctx, "login:198.51.100.7")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if got.Attempts != 4 {
		t.Fatalf("expected attempts 4, got %d", got.Attempts)
	}
	if !got.LastAttemptAt.Equal(record.LastAttemptAt) {
		t.Fatalf("expected last attempt %v, got %v", record.LastAttemptAt, got.LastAttemptAt)
	}
	if got.LockoutUntil == nil || !got.LockoutUntil.Equal(lockout) {
		t.Fatalf("unexpected lockout %+v", got.LockoutUntil)
	}

	remaining := server.TTL("ct:gate:attempts:login:198.51.100.7")
	if remaining <= 0 || remaining > 48*time.Hour {
		t.Fatalf("expected ttl within (0, 48h], got %v", remaining)
	}
}

func TestAttemptStorePutClearsStaleLockout(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts"})

	ctx := context.Background()
	lockout := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	if err := store.Put(ctx, "login:key", domain.AttemptRecord{
		Attempts:      6,
		LastAttemptAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		LockoutUntil:  &lockout,
	}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	// Writing a record without a lockout must not leave the old lockout
	// field behind in the hash.
	if err := store.Put(ctx, "login:key", domain.AttemptRecord{
		Attempts:      1,
		LastAttemptAt: time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, ok, err := store.Get(ctx, "login:key")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v", ok, err)
	}
	if got.LockoutUntil != nil {
		t.Fatalf("expected lockout cleared, got %v", got.LockoutUntil)
	}
	if got.Attempts != 1 {
		t.Fatalf("expected attempts 1, got %d", got.Attempts)
	}
}

func TestAttemptStoreGetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts"})

	if _, ok, err := store.Get(context.Background(), "login:absent"); err != nil || ok {
		t.Fatalf("expected absent record, got ok=%v err=%v", ok, err)
	}
}

func TestAttemptStoreDelete(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts"})

	ctx := context.Background()
	if err := store.Put(ctx, "login:key", domain.AttemptRecord{Attempts: 1, LastAttemptAt: time.Now()}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := store.Delete(ctx, "login:key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "login:key"); ok {
		t.Fatal("expected record to be deleted")
	}

	if err := store.Delete(ctx, "login:missing"); err != nil {
		t.Fatalf("Delete of missing key returned error: %v", err)
	}
}

func TestAttemptStoreKeysStripsPrefix(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts"})

	ctx := context.Background()
	for _, key := range []string{"login:a", "login:b", "reset:c"} {
		if err := store.Put(ctx, key, domain.AttemptRecord{Attempts: 1, LastAttemptAt: time.Now()}); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	sort.Strings(keys)

	want := []string{"login:a", "login:b", "reset:c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("expected keys %v, got %v", want, keys)
		}
	}
}

func TestAttemptStoreCorruptRecordReadsAsAbsent(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewAttemptStore(client, AttemptStoreConfig{KeyPrefix: "ct:gate:attempts"})

	server.HSet("ct:gate:attempts:login:key", "attempts", "not-a-number")
	server.HSet("ct:gate:attempts:login:key", "last_attempt_at", "also-bad")

	got, ok, err := store.Get(context.Background(), "login:key")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected corrupt record to read as absent, got %+v", got)
	}

	// The next write replaces the corrupt hash outright.
	if err := store.Put(context.Background(), "login:key", domain.AttemptRecord{Attempts: 1, LastAttemptAt: time.Now()}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "login:key"); !ok {
		t.Fatal("expected record to be readable after rewrite")
	}
}
