package manager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/subscription"
)

// LoadSeedConfig reads the local seed config file and merges its sources
// into the admin config under the same provenance rules as a subscription
// refresh. The file is plain JSON in the subscription payload shape. An
// unchanged file is a no-op.
func (m *Manager) LoadSeedConfig(ctx context.Context) error {
	data, err := os.ReadFile(m.cfg.Seed.Path)
	if err != nil {
		return fmt.Errorf("failed to read seed config: %w", err)
	}

	payload, err := subscription.ParsePayload(data)
	if err != nil {
		return fmt.Errorf("invalid seed config: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	applied := false
	err = m.AdminConfigs.Update(ctx, func(cfg *model.AdminConfig) error {
		if cfg.ConfigHash == hash {
			return nil
		}
		cfg.Sources = subscription.MergeSources(cfg.Sources, payload.Sources)
		cfg.Lives = subscription.MergeLives(cfg.Lives, payload.Lives)
		if payload.SiteName != "" {
			cfg.Site.SiteName = payload.SiteName
		}
		if payload.CacheTime > 0 {
			cfg.Site.SiteInterfaceCacheTime = payload.CacheTime
		}
		cfg.ConfigHash = hash
		cfg.ConfigVersion++
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		m.log.WithFields(map[string]interface{}{
			"path":    m.cfg.Seed.Path,
			"sources": len(payload.Sources),
		}).Info("seed config applied")
	}
	return nil
}

// watchSeedConfig reloads the seed config when the file changes. The
// parent directory is watched because editors typically replace the file
// by rename, which drops a watch on the file itself.
func (m *Manager) watchSeedConfig() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(m.cfg.Seed.Path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch seed config dir: %w", err)
	}

	m.seedStop = make(chan struct{})
	m.seedDone = make(chan struct{})
	target := filepath.Clean(m.cfg.Seed.Path)

	go func() {
		defer close(m.seedDone)
		defer watcher.Close()

		// Coalesce event bursts from a single save.
		var pending <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(200 * time.Millisecond)
			case <-pending:
				pending = nil
				if err := m.LoadSeedConfig(context.Background()); err != nil {
					m.log.WithError(err).Warn("seed config reload failed")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.WithError(err).Warn("seed config watcher error")
			case <-m.seedStop:
				return
			}
		}
	}()

	m.log.WithField("path", m.cfg.Seed.Path).Info("watching seed config")
	return nil
}

func (m *Manager) stopSeedWatcher() {
	if m.seedStop == nil {
		return
	}
	close(m.seedStop)
	<-m.seedDone
	m.seedStop = nil
	m.seedDone = nil
}
