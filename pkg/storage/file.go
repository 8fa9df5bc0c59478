package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileSuffix = ".json"

// FileBackend stores one JSON document per key as files under a
// per-namespace directory tree rooted at rootDir.
//
// Writes go through a same-directory temp file and a rename, so readers in
// this process never observe a half-written document. There is no
// cross-process locking; see the package documentation.
type FileBackend struct {
	rootDir string
}

// NewFileBackend creates a file backend rooted at rootDir, creating the
// root if needed.
func NewFileBackend(rootDir string) (*FileBackend, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileBackend{rootDir: rootDir}, nil
}

// sanitizeComponent makes one path component filesystem-safe. Composite
// keys keep their '+' separator; everything else outside [A-Za-z0-9._+-]
// is replaced, and a component may not begin with a dot.
func sanitizeComponent(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-' || r == '+':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	for strings.HasPrefix(s, ".") {
		s = "_" + strings.TrimPrefix(s, ".")
	}
	if s == "" {
		s = "_"
	}
	return s
}

// namespaceDir maps a namespace like "users/alice" to its directory.
func (b *FileBackend) namespaceDir(namespace string) string {
	parts := strings.Split(namespace, "/")
	for i, p := range parts {
		parts[i] = sanitizeComponent(p)
	}
	return filepath.Join(append([]string{b.rootDir}, parts...)...)
}

func (b *FileBackend) keyPath(namespace, key string) string {
	return filepath.Join(b.namespaceDir(namespace), sanitizeComponent(key)+fileSuffix)
}

// Get reads a document. A missing file is a valid null result.
func (b *FileBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.keyPath(namespace, key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}
	return data, nil
}

// Set writes a document atomically with respect to in-process readers.
func (b *FileBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := b.namespaceDir(namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}

	tmp := filepath.Join(dir, "."+sanitizeComponent(key)+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	if err := os.Rename(tmp, b.keyPath(namespace, key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing key is a no-op.
func (b *FileBackend) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(b.keyPath(namespace, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// ListKeys lists the document keys in a namespace. An absent namespace
// lists as empty.
func (b *FileBackend) ListKeys(ctx context.Context, namespace string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.namespaceDir(namespace))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", namespace, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileSuffix))
	}
	return keys, nil
}

// ListNamespaces lists the direct child namespaces under prefix, e.g. all
// usernames under "users".
func (b *FileBackend) ListNamespaces(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.namespaceDir(prefix))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces under %s: %w", prefix, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// DeleteNamespace removes a namespace directory and everything below it.
func (b *FileBackend) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(b.namespaceDir(namespace)); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", namespace, err)
	}
	return nil
}

// EnsureNamespace creates the namespace directory if it does not exist.
func (b *FileBackend) EnsureNamespace(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(b.namespaceDir(namespace), 0o755); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}
	return nil
}

// Ping verifies the data directory is still accessible.
func (b *FileBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(b.rootDir); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}
