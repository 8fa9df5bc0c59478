// Package cache implements the in-process TTL cache sitting in front of
// the durable backend.
//
// Entries are keyed by (category, key). Categories are free-form strings
// that scope invalidation — "playrecords_alice" holds one user's play
// records, "playstats" the site summary — and each category is backed by
// its own store, so clearing one touches only its own entries. Entries are
// a derived view of backend state; the backend stays the source of truth.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kelpgrid/driftwatch/pkg/observability"
)

const (
	// DefaultTTL is applied when Set is called without an explicit TTL.
	DefaultTTL = 5 * time.Minute

	// SweepInterval is how often each category's background sweep removes
	// expired entries to bound memory growth.
	SweepInterval = 1 * time.Minute
)

// Entry is one (key, value) pair for batched population via MSet. A zero
// TTL means the manager's default.
type Entry struct {
	Key   string
	Value interface{}
	TTL   time.Duration
}

// Manager is the process-wide TTL cache. All operations are synchronous
// and purely in-memory; nothing here ever blocks on I/O.
type Manager struct {
	mu         sync.RWMutex
	categories map[string]*gocache.Cache

	defaultTTL time.Duration
	sweepEvery time.Duration
	metrics    *observability.Metrics
}

// New creates a cache manager. Zero durations fall back to DefaultTTL and
// SweepInterval; metrics may be nil.
func New(defaultTTL, sweepEvery time.Duration, metrics *observability.Metrics) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if sweepEvery <= 0 {
		sweepEvery = SweepInterval
	}
	return &Manager{
		categories: make(map[string]*gocache.Cache),
		defaultTTL: defaultTTL,
		sweepEvery: sweepEvery,
		metrics:    metrics,
	}
}

// category returns the store for a category, creating it on first use.
func (m *Manager) category(name string) *gocache.Cache {
	m.mu.RLock()
	c, ok := m.categories[name]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.categories[name]; ok {
		return c
	}
	c = gocache.New(m.defaultTTL, m.sweepEvery)
	if m.metrics != nil {
		evictions := m.metrics.CacheEvictionsTotal.WithLabelValues(name)
		c.OnEvicted(func(string, interface{}) {
			evictions.Inc()
		})
	}
	m.categories[name] = c
	return c
}

// peek returns the category store without creating it.
func (m *Manager) peek(name string) (*gocache.Cache, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[name]
	return c, ok
}

// Get returns the cached value for (category, key), or (nil, false) on a
// miss or expired entry.
func (m *Manager) Get(category, key string) (interface{}, bool) {
	c, ok := m.peek(category)
	if !ok {
		m.miss(category)
		return nil, false
	}
	v, ok := c.Get(key)
	if !ok {
		m.miss(category)
		return nil, false
	}
	m.hit(category)
	return v, true
}

// Set stores a value. An optional TTL overrides the default; zero or
// negative keeps the default.
func (m *Manager) Set(category, key string, value interface{}, ttl ...time.Duration) {
	d := gocache.DefaultExpiration
	if len(ttl) > 0 && ttl[0] > 0 {
		d = ttl[0]
	}
	c := m.category(category)
	c.Set(key, value, d)
	m.gauge(category, c)
}

// MSet stores a batch of entries in one category, used when a whole
// backend document is loaded at once.
func (m *Manager) MSet(category string, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	c := m.category(category)
	for _, e := range entries {
		d := gocache.DefaultExpiration
		if e.TTL > 0 {
			d = e.TTL
		}
		c.Set(e.Key, e.Value, d)
	}
	m.gauge(category, c)
}

// Delete removes one entry. Missing entries are a no-op.
func (m *Manager) Delete(category, key string) {
	if c, ok := m.peek(category); ok {
		c.Delete(key)
		m.gauge(category, c)
	}
}

// ClearCategory drops every entry in one category. Cost is proportional to
// that category alone, not the whole cache.
func (m *Manager) ClearCategory(category string) {
	m.mu.Lock()
	c, ok := m.categories[category]
	if ok {
		delete(m.categories, category)
	}
	m.mu.Unlock()

	if ok {
		c.Flush()
		if m.metrics != nil {
			m.metrics.CacheEntries.WithLabelValues(category).Set(0)
		}
	}
}

// ClearExpired removes expired entries from every category immediately, in
// addition to the per-category background sweeps.
func (m *Manager) ClearExpired() {
	m.mu.RLock()
	stores := make(map[string]*gocache.Cache, len(m.categories))
	for name, c := range m.categories {
		stores[name] = c
	}
	m.mu.RUnlock()

	for name, c := range stores {
		c.DeleteExpired()
		m.gauge(name, c)
	}
}

// Purge drops everything from every category.
func (m *Manager) Purge() {
	m.mu.Lock()
	old := m.categories
	m.categories = make(map[string]*gocache.Cache)
	m.mu.Unlock()

	for name, c := range old {
		c.Flush()
		if m.metrics != nil {
			m.metrics.CacheEntries.WithLabelValues(name).Set(0)
		}
	}
}

// Close drops all cached entries. The per-category sweep goroutines are
// stopped by their finalizers once the instances are unreferenced.
func (m *Manager) Close() {
	m.Purge()
}

// Len reports the number of live entries in a category.
func (m *Manager) Len(category string) int {
	if c, ok := m.peek(category); ok {
		return c.ItemCount()
	}
	return 0
}

func (m *Manager) hit(category string) {
	if m.metrics != nil {
		m.metrics.CacheHitsTotal.WithLabelValues(category).Inc()
	}
}

func (m *Manager) miss(category string) {
	if m.metrics != nil {
		m.metrics.CacheMissesTotal.WithLabelValues(category).Inc()
	}
}

func (m *Manager) gauge(category string, c *gocache.Cache) {
	if m.metrics != nil {
		m.metrics.CacheEntries.WithLabelValues(category).Set(float64(c.ItemCount()))
	}
}
