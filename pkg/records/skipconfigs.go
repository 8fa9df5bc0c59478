package records

import (
	"context"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/model"
)

// SkipConfigs stores intro/outro skip settings per content item. Two
// document generations coexist: the current multi-segment form and the
// legacy single intro/outro pair. Reads prefer the current form and
// upgrade legacy entries on the fly; legacy documents are kept on disk
// untouched so older clients keep working.
type SkipConfigs struct {
	s *Store
}

// NewSkipConfigs creates the skip config repository.
func NewSkipConfigs(s *Store) *SkipConfigs {
	return &SkipConfigs{s: s}
}

// Get returns the skip config for one content item, or nil when neither
// generation has one. A legacy entry is returned upgraded to the
// multi-segment form.
func (r *SkipConfigs) Get(ctx context.Context, user, source, id string) (*model.EpisodeSkipConfig, error) {
	key := model.Key(source, id)

	cfg, err := getOne[model.EpisodeSkipConfig](ctx, r.s, user, DocEpisodeSkips, key)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	legacy, err := getOne[model.LegacySkipConfig](ctx, r.s, user, DocSkipConfigs, key)
	if err != nil {
		return nil, err
	}
	if legacy == nil {
		return nil, nil
	}
	return legacy.Upgrade(source, id), nil
}

// GetAll returns every skip config of a user, keyed by composite key.
// When both generations hold an entry for the same key the multi-segment
// one wins.
func (r *SkipConfigs) GetAll(ctx context.Context, user string) (map[string]*model.EpisodeSkipConfig, error) {
	legacy, err := getAll[model.LegacySkipConfig](ctx, r.s, user, DocSkipConfigs)
	if err != nil {
		return nil, err
	}
	current, err := getAll[model.EpisodeSkipConfig](ctx, r.s, user, DocEpisodeSkips)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.EpisodeSkipConfig, len(legacy)+len(current))
	for key, l := range legacy {
		source, id, err := model.ParseKey(key)
		if err != nil {
			continue
		}
		out[key] = l.Upgrade(source, id)
	}
	for key, c := range current {
		out[key] = c
	}
	return out, nil
}

// Set saves a multi-segment skip config.
func (r *SkipConfigs) Set(ctx context.Context, user string, cfg *model.EpisodeSkipConfig) error {
	if cfg.Source == "" || cfg.ID == "" {
		return ErrInvalidKey
	}
	if cfg.UpdatedAt == 0 {
		cfg.UpdatedAt = time.Now().UnixMilli()
	}
	return setOne(ctx, r.s, user, DocEpisodeSkips, model.Key(cfg.Source, cfg.ID), cfg)
}

// SetLegacy saves a single intro/outro pair in the legacy document.
// Kept for older clients that still write the old shape.
func (r *SkipConfigs) SetLegacy(ctx context.Context, user, source, id string, cfg *model.LegacySkipConfig) error {
	return setOne(ctx, r.s, user, DocSkipConfigs, model.Key(source, id), cfg)
}

// Delete removes the skip config for one content item from both
// generations, so a later read cannot resurrect a stale legacy entry.
func (r *SkipConfigs) Delete(ctx context.Context, user, source, id string) error {
	key := model.Key(source, id)
	if err := deleteOne[model.EpisodeSkipConfig](ctx, r.s, user, DocEpisodeSkips, key); err != nil {
		return err
	}
	return deleteOne[model.LegacySkipConfig](ctx, r.s, user, DocSkipConfigs, key)
}

// Clear removes both skip config documents of a user.
func (r *SkipConfigs) Clear(ctx context.Context, user string) error {
	if err := clearDoc(ctx, r.s, user, DocEpisodeSkips); err != nil {
		return err
	}
	return clearDoc(ctx, r.s, user, DocSkipConfigs)
}
