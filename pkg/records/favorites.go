package records

import (
	"context"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/model"
)

// Favorites stores a user's favorited content, keyed by the composite
// "{source}+{id}" key.
type Favorites struct {
	s *Store
}

// NewFavorites creates the favorites repository.
func NewFavorites(s *Store) *Favorites {
	return &Favorites{s: s}
}

// Get returns one favorite, or nil when the key is not favorited.
func (r *Favorites) Get(ctx context.Context, user, key string) (*model.Favorite, error) {
	return getOne[model.Favorite](ctx, r.s, user, DocFavorites, key)
}

// GetAll returns every favorite of a user, keyed by composite key.
func (r *Favorites) GetAll(ctx context.Context, user string) (map[string]*model.Favorite, error) {
	return getAll[model.Favorite](ctx, r.s, user, DocFavorites)
}

// Set saves a favorite. A re-save of an existing favorite keeps the
// original save time, so favorites sort stably by when they were first
// added.
func (r *Favorites) Set(ctx context.Context, user, key string, fav *model.Favorite) error {
	if _, _, err := model.ParseKey(key); err != nil {
		return ErrInvalidKey
	}
	existing, err := r.Get(ctx, user, key)
	if err != nil {
		return err
	}
	if existing != nil && existing.SaveTime > 0 {
		fav.SaveTime = existing.SaveTime
	} else if fav.SaveTime == 0 {
		fav.SaveTime = time.Now().UnixMilli()
	}
	// A save carrying the placeholder never clobbers a real count that a
	// previous heal already established.
	if fav.TotalEpisodes == model.PlaceholderEpisodes && existing != nil &&
		existing.TotalEpisodes > 0 && existing.TotalEpisodes != model.PlaceholderEpisodes {
		fav.TotalEpisodes = existing.TotalEpisodes
	}
	return setOne(ctx, r.s, user, DocFavorites, key, fav)
}

// Delete removes one favorite.
func (r *Favorites) Delete(ctx context.Context, user, key string) error {
	return deleteOne[model.Favorite](ctx, r.s, user, DocFavorites, key)
}

// Clear removes a user's whole favorites document.
func (r *Favorites) Clear(ctx context.Context, user string) error {
	return clearDoc(ctx, r.s, user, DocFavorites)
}

// HealEpisodeCount replaces a stale placeholder episode count with the
// real one once it becomes known. Sources that have not yet published an
// episode list report the placeholder value; a later detail fetch carries
// the real count and the stored favorite catches up here. Returns true
// when the favorite was updated.
func (r *Favorites) HealEpisodeCount(ctx context.Context, user, key string, realCount int) (bool, error) {
	if realCount <= 0 || realCount == model.PlaceholderEpisodes {
		return false, nil
	}
	fav, err := r.Get(ctx, user, key)
	if err != nil || fav == nil {
		return false, err
	}
	if fav.TotalEpisodes != model.PlaceholderEpisodes || fav.TotalEpisodes == realCount {
		return false, nil
	}
	fav.TotalEpisodes = realCount
	if err := setOne(ctx, r.s, user, DocFavorites, key, fav); err != nil {
		return false, err
	}
	return true, nil
}
