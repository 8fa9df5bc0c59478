package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// setupRedisBackendTest creates a miniredis instance and returns the
// backend and a cleanup function.
func setupRedisBackendTest(t *testing.T) (*RedisBackend, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Type = TypeRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	b, err := NewRedisBackend(cfg)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis backend: %v", err)
	}

	cleanup := func() {
		b.Close()
		mr.Close()
	}
	return b, mr, cleanup
}

func TestNewRedisBackend_InvalidURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = TypeRedis
	cfg.RedisURL = "invalid://url"

	if _, err := NewRedisBackend(cfg); err == nil {
		t.Fatal("Expected error for invalid redis URL")
	}
}

func TestNewRedisBackend_ConnectionFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = TypeRedis
	cfg.RedisURL = "redis://localhost:9999" // Non-existent server

	if _, err := NewRedisBackend(cfg); err == nil {
		t.Fatal("Expected connection error")
	}
}

func TestRedisBackend_RoundTrip(t *testing.T) {
	b, mr, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	ctx := context.Background()
	value := []byte(`{"title":"some show"}`)

	if err := b.Set(ctx, "users/alice", "playrecords", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Namespace separators map to ':'.
	if !mr.Exists("users:alice:playrecords") {
		t.Error("Expected key users:alice:playrecords in redis")
	}

	got, err := b.Get(ctx, "users/alice", "playrecords")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Expected %s, got %s", value, got)
	}
}

func TestRedisBackend_GetMissing(t *testing.T) {
	b, _, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	got, err := b.Get(context.Background(), "users/alice", "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing key, got %q", got)
	}
}

func TestRedisBackend_Delete(t *testing.T) {
	b, _, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	ctx := context.Background()
	if err := b.Set(ctx, "config", "admin", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Delete(ctx, "config", "admin"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := b.Get(ctx, "config", "admin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after delete, got %q", got)
	}

	if err := b.Delete(ctx, "config", "admin"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestRedisBackend_ListKeys(t *testing.T) {
	b, _, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	ctx := context.Background()
	docs := []string{"playrecords", "favorites", "profile"}
	for _, doc := range docs {
		if err := b.Set(ctx, "users/alice", doc, []byte(`{}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	// A different user's documents must not leak into the listing.
	if err := b.Set(ctx, "users/bob", "playrecords", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	keys, err := b.ListKeys(ctx, "users/alice")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	sort.Strings(keys)
	sort.Strings(docs)
	if len(keys) != len(docs) {
		t.Fatalf("Expected %d keys, got %v", len(docs), keys)
	}
	for i := range docs {
		if keys[i] != docs[i] {
			t.Errorf("Expected key %s, got %s", docs[i], keys[i])
		}
	}
}

func TestRedisBackend_ListNamespaces(t *testing.T) {
	b, _, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	ctx := context.Background()
	for _, user := range []string{"alice", "bob"} {
		if err := b.Set(ctx, UserNamespace(user), "profile", []byte(`{}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	names, err := b.ListNamespaces(ctx, NamespaceUsers)
	if err != nil {
		t.Fatalf("ListNamespaces failed: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Expected [alice bob], got %v", names)
	}
}

func TestRedisBackend_DeleteNamespace(t *testing.T) {
	b, mr, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	ctx := context.Background()
	for _, doc := range []string{"playrecords", "favorites"} {
		if err := b.Set(ctx, "users/alice", doc, []byte(`{}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := b.Set(ctx, "users/bob", "playrecords", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := b.DeleteNamespace(ctx, "users/alice"); err != nil {
		t.Fatalf("DeleteNamespace failed: %v", err)
	}

	if mr.Exists("users:alice:playrecords") || mr.Exists("users:alice:favorites") {
		t.Error("Expected alice's keys to be deleted")
	}
	if !mr.Exists("users:bob:playrecords") {
		t.Error("Expected bob's keys to survive")
	}
}

func TestRedisBackend_Ping(t *testing.T) {
	b, mr, cleanup := setupRedisBackendTest(t)
	defer cleanup()

	if err := b.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	mr.Close()
	if err := b.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after server shutdown")
	}
}
