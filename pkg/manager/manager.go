package manager

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kelpgrid/driftwatch/pkg/cache"
	"github.com/kelpgrid/driftwatch/pkg/config"
	"github.com/kelpgrid/driftwatch/pkg/observability"
	"github.com/kelpgrid/driftwatch/pkg/records"
	"github.com/kelpgrid/driftwatch/pkg/stats"
	"github.com/kelpgrid/driftwatch/pkg/storage"
	"github.com/kelpgrid/driftwatch/pkg/subscription"
)

// Manager is the facade over the whole persistence layer. One instance is
// built at startup and shared; all methods are safe for concurrent use.
type Manager struct {
	cfg     *config.Config
	log     *observability.Logger
	metrics *observability.Metrics

	backend storage.Backend
	cache   *cache.Manager
	store   *records.Store

	PlayRecords   *records.PlayRecords
	Favorites     *records.Favorites
	SearchHistory *records.SearchHistory
	SkipConfigs   *records.SkipConfigs
	Users         *records.Users
	AdminConfigs  *records.AdminConfigs
	Stats         *stats.Aggregator

	sub      *subscription.Client
	seedStop chan struct{}
	seedDone chan struct{}
}

// New builds the manager from configuration. Exactly one backend is
// resolved from cfg.Storage.Type; nothing else in the process opens
// storage connections. Metrics may be nil.
func New(cfg *config.Config, log *observability.Logger, metrics *observability.Metrics) (*Manager, error) {
	if log == nil {
		log = observability.NopLogger()
	}

	backend, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if metrics != nil {
		backend = storage.Instrument(backend, cfg.Storage.Type, metrics)
	}

	cacheManager := cache.New(cfg.Cache.DefaultTTL, cfg.Cache.SweepInterval, metrics)
	store := records.NewStore(backend, cacheManager, log)

	m := &Manager{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		backend: backend,
		cache:   cacheManager,
		store:   store,

		PlayRecords:   records.NewPlayRecords(store),
		Favorites:     records.NewFavorites(store),
		SearchHistory: records.NewSearchHistory(store),
		SkipConfigs:   records.NewSkipConfigs(store),
		Users:         records.NewUsers(store),
		AdminConfigs:  records.NewAdminConfigs(store),
		Stats:         stats.New(store, log, metrics),

		sub: subscription.NewClient(&http.Client{Timeout: cfg.Subscription.FetchTimeout}, log),
	}

	m.bootstrap(context.Background())

	return m, nil
}

// bootstrap prepares the backend for first use. Failures are logged, not
// fatal: a redis backend needs no namespace creation at all and a file
// backend will create directories again on first write.
func (m *Manager) bootstrap(ctx context.Context) {
	for _, ns := range storage.SystemNamespaces {
		if err := m.backend.EnsureNamespace(ctx, ns); err != nil {
			m.log.WithError(err).WithField("namespace", ns).Warn("failed to prepare namespace")
		}
	}

	if err := m.ensureOwner(ctx); err != nil {
		m.log.WithError(err).Warn("failed to provision owner account")
	}

	if m.cfg.Seed.Path != "" {
		if err := m.LoadSeedConfig(ctx); err != nil {
			m.log.WithError(err).WithField("path", m.cfg.Seed.Path).Warn("failed to load seed config")
		}
		if m.cfg.Seed.Watch {
			if err := m.watchSeedConfig(); err != nil {
				m.log.WithError(err).Warn("failed to watch seed config")
			}
		}
	}
}

// Backend exposes the storage backend for health checks.
func (m *Manager) Backend() storage.Backend {
	return m.backend
}

// Cache exposes the cache manager.
func (m *Manager) Cache() *cache.Manager {
	return m.cache
}

// Ping reports backend reachability.
func (m *Manager) Ping(ctx context.Context) error {
	return m.backend.Ping(ctx)
}

// Reset wipes every stored document: all system namespaces and every user
// namespace, then the whole cache. Meant for explicit admin-triggered
// factory resets.
func (m *Manager) Reset(ctx context.Context) error {
	usernames, err := m.backend.ListNamespaces(ctx, storage.NamespaceUsers)
	if err != nil {
		return fmt.Errorf("failed to enumerate users for reset: %w", err)
	}
	for _, username := range usernames {
		if err := m.backend.DeleteNamespace(ctx, storage.UserNamespace(username)); err != nil {
			return fmt.Errorf("failed to wipe user %s: %w", username, err)
		}
	}
	for _, ns := range storage.SystemNamespaces {
		if err := m.backend.DeleteNamespace(ctx, ns); err != nil {
			return fmt.Errorf("failed to wipe namespace %s: %w", ns, err)
		}
	}

	m.cache.Purge()
	m.log.Warn("storage reset completed")

	// The owner account is provisioned from the environment, so it comes
	// straight back.
	if err := m.ensureOwner(ctx); err != nil {
		m.log.WithError(err).Warn("failed to re-provision owner after reset")
	}
	return nil
}

// Close stops the seed watcher and releases the cache and the backend.
func (m *Manager) Close() error {
	m.stopSeedWatcher()
	m.cache.Close()
	return m.backend.Close()
}
