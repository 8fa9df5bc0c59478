package storage

import (
	"context"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/observability"
)

// instrumentedBackend decorates a Backend with Prometheus metrics.
type instrumentedBackend struct {
	inner   Backend
	name    string
	metrics *observability.Metrics
}

// Instrument wraps a backend so every operation records a counter and a
// duration histogram. A nil metrics returns the backend unchanged.
func Instrument(b Backend, name string, m *observability.Metrics) Backend {
	if m == nil {
		return b
	}
	return &instrumentedBackend{inner: b, name: name, metrics: m}
}

func (b *instrumentedBackend) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		b.metrics.StorageErrorsTotal.WithLabelValues(op, b.name).Inc()
	}
	b.metrics.StorageOperationsTotal.WithLabelValues(op, b.name, status).Inc()
	b.metrics.StorageOperationDuration.WithLabelValues(op, b.name).Observe(time.Since(start).Seconds())
}

func (b *instrumentedBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	start := time.Now()
	data, err := b.inner.Get(ctx, namespace, key)
	b.observe("get", start, err)
	return data, err
}

func (b *instrumentedBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	start := time.Now()
	err := b.inner.Set(ctx, namespace, key, value)
	b.observe("set", start, err)
	return err
}

func (b *instrumentedBackend) Delete(ctx context.Context, namespace, key string) error {
	start := time.Now()
	err := b.inner.Delete(ctx, namespace, key)
	b.observe("delete", start, err)
	return err
}

func (b *instrumentedBackend) ListKeys(ctx context.Context, namespace string) ([]string, error) {
	start := time.Now()
	keys, err := b.inner.ListKeys(ctx, namespace)
	b.observe("list_keys", start, err)
	return keys, err
}

func (b *instrumentedBackend) ListNamespaces(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	names, err := b.inner.ListNamespaces(ctx, prefix)
	b.observe("list_namespaces", start, err)
	return names, err
}

func (b *instrumentedBackend) DeleteNamespace(ctx context.Context, namespace string) error {
	start := time.Now()
	err := b.inner.DeleteNamespace(ctx, namespace)
	b.observe("delete_namespace", start, err)
	return err
}

func (b *instrumentedBackend) EnsureNamespace(ctx context.Context, namespace string) error {
	start := time.Now()
	err := b.inner.EnsureNamespace(ctx, namespace)
	b.observe("ensure_namespace", start, err)
	return err
}

func (b *instrumentedBackend) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

func (b *instrumentedBackend) Close() error {
	return b.inner.Close()
}
