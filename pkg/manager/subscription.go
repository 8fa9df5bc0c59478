package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/subscription"
)

// RefreshSubscription fetches the subscribed source list and merges it
// into the admin config. A payload whose hash matches the last applied
// one is skipped unless force is set. Returns true when a merge was
// applied.
func (m *Manager) RefreshSubscription(ctx context.Context, force bool) (bool, error) {
	current, err := m.AdminConfigs.Get(ctx)
	if err != nil {
		m.observeRefresh("error")
		return false, err
	}
	if current == nil {
		current = model.DefaultAdminConfig()
	}

	url := current.Subscription.URL
	if url == "" {
		url = m.cfg.Subscription.URL
	}
	if url == "" {
		return false, fmt.Errorf("no subscription URL configured")
	}

	payload, hash, err := m.sub.Fetch(ctx, url)
	if err != nil {
		m.observeRefresh("error")
		return false, err
	}

	if !force && hash == current.ConfigHash {
		m.log.WithField("hash", hash).Debug("subscription unchanged, skipping merge")
		m.observeRefresh("skipped")

		// Still record that we checked.
		err := m.AdminConfigs.Update(ctx, func(cfg *model.AdminConfig) error {
			cfg.Subscription.LastCheck = time.Now().UnixMilli()
			return nil
		})
		return false, err
	}

	err = m.AdminConfigs.Update(ctx, func(cfg *model.AdminConfig) error {
		cfg.Sources = subscription.MergeSources(cfg.Sources, payload.Sources)
		cfg.Lives = subscription.MergeLives(cfg.Lives, payload.Lives)
		cfg.ConfigHash = hash
		cfg.ConfigVersion++
		cfg.Subscription.URL = url
		cfg.Subscription.LastCheck = time.Now().UnixMilli()
		return nil
	})
	if err != nil {
		m.observeRefresh("error")
		return false, err
	}

	m.observeRefresh("success")
	m.log.WithFields(map[string]interface{}{
		"sources": len(payload.Sources),
		"lives":   len(payload.Lives),
		"hash":    hash,
	}).Info("subscription refreshed")
	return true, nil
}

func (m *Manager) observeRefresh(status string) {
	if m.metrics != nil {
		m.metrics.SubscriptionRefreshs.WithLabelValues(status).Inc()
	}
}
