package storage

import (
	"context"
	"fmt"
)

// System namespaces bootstrapped on startup, next to the per-user
// "users/{username}" namespaces.
const (
	NamespaceConfig = "config"
	NamespaceStats  = "stats"
	NamespaceCache  = "cache"
	NamespaceTemp   = "temp"

	// NamespaceUsers is the parent namespace of all per-user data.
	NamespaceUsers = "users"
)

// SystemNamespaces lists the fixed namespaces every backend is expected to
// serve.
var SystemNamespaces = []string{
	NamespaceConfig,
	NamespaceStats,
	NamespaceCache,
	NamespaceTemp,
	NamespaceUsers,
}

// UserNamespace returns the namespace holding one user's documents.
func UserNamespace(username string) string {
	return NamespaceUsers + "/" + username
}

// Backend is durable storage for opaque documents keyed by (namespace, key).
//
// Get returns (nil, nil) when the key does not exist; absence is a valid
// outcome, never an error. Delete of a missing key is a no-op.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error

	// ListKeys returns the keys present in a namespace, in unspecified
	// order. A namespace that does not exist lists as empty.
	ListKeys(ctx context.Context, namespace string) ([]string, error)

	// ListNamespaces returns the direct child namespaces under prefix;
	// ListNamespaces(ctx, "users") enumerates known usernames.
	ListNamespaces(ctx context.Context, prefix string) ([]string, error)

	// DeleteNamespace removes a namespace and everything below it. Used
	// for full data resets and user deletion.
	DeleteNamespace(ctx context.Context, namespace string) error

	// EnsureNamespace idempotently prepares a namespace for writes.
	EnsureNamespace(ctx context.Context, namespace string) error

	Ping(ctx context.Context) error
	Close() error
}

// New resolves a Backend implementation from configuration. It is called
// exactly once per process, by the storage manager.
func New(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TypeFile:
		return NewFileBackend(cfg.DataDir)
	case TypeRedis:
		return NewRedisBackend(cfg)
	case TypeNoop:
		return NewNoopBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
