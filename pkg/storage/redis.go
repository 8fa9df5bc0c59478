package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores documents in any Redis-compatible service. A
// namespace maps to a key prefix: "users/alice" + "favorites" becomes
// "users:alice:favorites". Atomicity of individual writes is delegated to
// the remote store, which makes this the only backend safe for
// multi-instance deployments.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a Redis backend and verifies connectivity.
func NewRedisBackend(cfg Config) (*RedisBackend, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB >= 0 {
		opts.DB = cfg.RedisDB
	}
	if cfg.RedisMaxRetries > 0 {
		opts.MaxRetries = cfg.RedisMaxRetries
	}
	if cfg.RedisPoolSize > 0 {
		opts.PoolSize = cfg.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	timeout := cfg.RedisTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{client: client}, nil
}

// nsPrefix maps a namespace to its redis key prefix (without trailing
// separator).
func nsPrefix(namespace string) string {
	return strings.ReplaceAll(namespace, "/", ":")
}

func redisKey(namespace, key string) string {
	return nsPrefix(namespace) + ":" + key
}

// Get reads a document. A missing key is a valid null result.
func (b *RedisBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s failed: %w", namespace, key, err)
	}
	return data, nil
}

// Set writes a document without expiry; the backend is the source of
// truth, TTLs belong to the cache layer.
func (b *RedisBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := b.client.Set(ctx, redisKey(namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s failed: %w", namespace, key, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing key is a no-op.
func (b *RedisBackend) Delete(ctx context.Context, namespace, key string) error {
	if err := b.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s/%s failed: %w", namespace, key, err)
	}
	return nil
}

// ListKeys scans the namespace prefix and returns the trailing key parts
// that name documents directly inside it (children of sub-namespaces are
// excluded).
func (b *RedisBackend) ListKeys(ctx context.Context, namespace string) ([]string, error) {
	prefix := nsPrefix(namespace) + ":"

	var keys []string
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), prefix)
		if rest == "" || strings.Contains(rest, ":") {
			continue
		}
		keys = append(keys, rest)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s failed: %w", namespace, err)
	}
	return keys, nil
}

// ListNamespaces scans for direct child namespaces under prefix by
// collecting the first path segment after it.
func (b *RedisBackend) ListNamespaces(ctx context.Context, prefix string) ([]string, error) {
	scanPrefix := nsPrefix(prefix) + ":"

	seen := make(map[string]bool)
	var names []string
	iter := b.client.Scan(ctx, 0, scanPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), scanPrefix)
		child, _, ok := strings.Cut(rest, ":")
		if !ok || child == "" {
			// A bare key directly under the prefix, not a namespace.
			continue
		}
		if !seen[child] {
			seen[child] = true
			names = append(names, child)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan namespaces under %s failed: %w", prefix, err)
	}
	return names, nil
}

// DeleteNamespace removes every key under the namespace prefix.
func (b *RedisBackend) DeleteNamespace(ctx context.Context, namespace string) error {
	prefix := nsPrefix(namespace) + ":"

	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s failed: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s failed: %w", namespace, err)
	}
	return nil
}

// EnsureNamespace is a no-op: redis namespaces are implicit in key
// prefixes.
func (b *RedisBackend) EnsureNamespace(ctx context.Context, namespace string) error {
	return nil
}

// Ping checks connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
