package storage

import (
	"context"
	"testing"
)

func TestNew_FileBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer b.Close()

	if _, ok := b.(*FileBackend); !ok {
		t.Errorf("Expected *FileBackend, got %T", b)
	}
}

func TestNew_NoopBackend(t *testing.T) {
	cfg := Config{Type: TypeNoop}

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := b.(*NoopBackend); !ok {
		t.Errorf("Expected *NoopBackend, got %T", b)
	}
}

func TestNew_UnknownType(t *testing.T) {
	if _, err := New(Config{Type: "etcd"}); err == nil {
		t.Fatal("Expected error for unknown storage type")
	}
}

func TestNew_MissingRequiredFields(t *testing.T) {
	if _, err := New(Config{Type: TypeFile}); err == nil {
		t.Fatal("Expected error for file backend without data dir")
	}
	if _, err := New(Config{Type: TypeRedis}); err == nil {
		t.Fatal("Expected error for redis backend without URL")
	}
}

func TestNoopBackend_AlwaysEmpty(t *testing.T) {
	b := NewNoopBackend()
	ctx := context.Background()

	if err := b.Set(ctx, "users/alice", "playrecords", []byte(`{}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := b.Get(ctx, "users/alice", "playrecords")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil from noop backend, got %q", got)
	}

	keys, err := b.ListKeys(ctx, "users/alice")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}

	if err := b.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestUserNamespace(t *testing.T) {
	if got := UserNamespace("alice"); got != "users/alice" {
		t.Errorf("Expected users/alice, got %s", got)
	}
}
