package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

const (
	adminConfigCategory = "adminconfig"
	adminConfigKey      = "admin"
)

// AdminConfigs stores the single global admin configuration document.
type AdminConfigs struct {
	s *Store
}

// NewAdminConfigs creates the admin config repository.
func NewAdminConfigs(s *Store) *AdminConfigs {
	return &AdminConfigs{s: s}
}

// Get returns the stored admin config, or nil when none has been written
// yet. Callers that need a working config on first boot should fall back
// to model.DefaultAdminConfig.
func (r *AdminConfigs) Get(ctx context.Context) (*model.AdminConfig, error) {
	if v, ok := r.s.cache.Get(adminConfigCategory, adminConfigKey); ok {
		if cfg, ok := v.(*model.AdminConfig); ok {
			return cfg, nil
		}
	}

	raw, err := r.s.backend.Get(ctx, storage.NamespaceConfig, adminConfigKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin config: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var cfg model.AdminConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("corrupt admin config document: %w", err)
	}

	r.s.cache.Set(adminConfigCategory, adminConfigKey, &cfg)
	return &cfg, nil
}

// Set writes the admin config and refreshes the cached copy.
func (r *AdminConfigs) Set(ctx context.Context, cfg *model.AdminConfig) error {
	unlock := r.s.locks.lock(docLockKey(storage.NamespaceConfig, adminConfigKey))
	defer unlock()

	return r.save(ctx, cfg)
}

// Update applies fn to the stored config under the config lock and writes
// the result back. When no config exists yet fn receives the default.
func (r *AdminConfigs) Update(ctx context.Context, fn func(*model.AdminConfig) error) error {
	unlock := r.s.locks.lock(docLockKey(storage.NamespaceConfig, adminConfigKey))
	defer unlock()

	cfg, err := r.load(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = model.DefaultAdminConfig()
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return r.save(ctx, cfg)
}

// AddCustomSource appends an admin-added source. Its origin is forced to
// custom so a later subscription refresh cannot remove it. Adding a key
// that already exists replaces that entry in place.
func (r *AdminConfigs) AddCustomSource(ctx context.Context, src model.SourceConfig) error {
	src.Origin = model.OriginCustom
	return r.Update(ctx, func(cfg *model.AdminConfig) error {
		if i := cfg.FindSource(src.Key); i >= 0 {
			cfg.Sources[i] = src
			return nil
		}
		cfg.Sources = append(cfg.Sources, src)
		return nil
	})
}

// RemoveSources removes the named sources, skipping any whose origin is
// not replaceable by key match alone. Custom sources are only removed
// when force is set.
func (r *AdminConfigs) RemoveSources(ctx context.Context, keys []string, force bool) error {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	return r.Update(ctx, func(cfg *model.AdminConfig) error {
		kept := cfg.Sources[:0:0]
		for _, src := range cfg.Sources {
			if drop[src.Key] && (force || src.Origin.Replaceable()) {
				continue
			}
			kept = append(kept, src)
		}
		cfg.Sources = kept
		return nil
	})
}

// load reads the config straight from the backend, bypassing the cache.
func (r *AdminConfigs) load(ctx context.Context) (*model.AdminConfig, error) {
	raw, err := r.s.backend.Get(ctx, storage.NamespaceConfig, adminConfigKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin config: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var cfg model.AdminConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("corrupt admin config document: %w", err)
	}
	return &cfg, nil
}

func (r *AdminConfigs) save(ctx context.Context, cfg *model.AdminConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal admin config: %w", err)
	}
	if err := r.s.backend.Set(ctx, storage.NamespaceConfig, adminConfigKey, raw); err != nil {
		return fmt.Errorf("failed to save admin config: %w", err)
	}
	r.s.cache.Set(adminConfigCategory, adminConfigKey, cfg)
	return nil
}
