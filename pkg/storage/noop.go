package storage

import "context"

// NoopBackend accepts every write and returns empty reads. It backs
// processes that run without configured storage so no code path ever sees
// a nil backend.
type NoopBackend struct{}

// NewNoopBackend creates a no-op backend.
func NewNoopBackend() *NoopBackend {
	return &NoopBackend{}
}

func (*NoopBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	return nil, nil
}

func (*NoopBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	return nil
}

func (*NoopBackend) Delete(ctx context.Context, namespace, key string) error {
	return nil
}

func (*NoopBackend) ListKeys(ctx context.Context, namespace string) ([]string, error) {
	return nil, nil
}

func (*NoopBackend) ListNamespaces(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

func (*NoopBackend) DeleteNamespace(ctx context.Context, namespace string) error {
	return nil
}

func (*NoopBackend) EnsureNamespace(ctx context.Context, namespace string) error {
	return nil
}

func (*NoopBackend) Ping(ctx context.Context) error {
	return nil
}

func (*NoopBackend) Close() error {
	return nil
}
