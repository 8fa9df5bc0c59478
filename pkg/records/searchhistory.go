package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelpgrid/driftwatch/pkg/storage"
)

// SearchHistoryLimit caps how many queries a user's history keeps.
const SearchHistoryLimit = 20

const searchHistoryKey = "all"

// SearchHistory stores a user's recent search queries, most recent first.
// The document is a single JSON array rather than a keyed map, so it
// bypasses the generic document helpers.
type SearchHistory struct {
	s *Store
}

// NewSearchHistory creates the search history repository.
func NewSearchHistory(s *Store) *SearchHistory {
	return &SearchHistory{s: s}
}

func (r *SearchHistory) category(user string) string {
	return docCategory(DocSearchHistory, user)
}

// List returns the user's search history, most recent first.
func (r *SearchHistory) List(ctx context.Context, user string) ([]string, error) {
	if v, ok := r.s.cache.Get(r.category(user), searchHistoryKey); ok {
		if history, ok := v.([]string); ok {
			return history, nil
		}
	}
	history, err := r.load(ctx, user)
	if err != nil {
		return nil, err
	}
	r.s.cache.Set(r.category(user), searchHistoryKey, history)
	return history, nil
}

// Add prepends a query to the history. An existing occurrence moves to
// the front instead of duplicating, and the history is trimmed to the
// limit. Blank queries are ignored.
func (r *SearchHistory) Add(ctx context.Context, user, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ns := storage.UserNamespace(user)
	unlock := r.s.locks.lock(docLockKey(ns, DocSearchHistory))
	defer unlock()

	history, err := r.load(ctx, user)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(history)+1)
	next = append(next, query)
	for _, q := range history {
		if q != query {
			next = append(next, q)
		}
	}
	if len(next) > SearchHistoryLimit {
		next = next[:SearchHistoryLimit]
	}
	if err := r.save(ctx, user, next); err != nil {
		return err
	}
	r.s.cache.Set(r.category(user), searchHistoryKey, next)
	return nil
}

// Delete removes one query from the history. Removing a query that is
// not present is a no-op.
func (r *SearchHistory) Delete(ctx context.Context, user, query string) error {
	ns := storage.UserNamespace(user)
	unlock := r.s.locks.lock(docLockKey(ns, DocSearchHistory))
	defer unlock()

	history, err := r.load(ctx, user)
	if err != nil {
		return err
	}
	next := history[:0:0]
	for _, q := range history {
		if q != query {
			next = append(next, q)
		}
	}
	if len(next) == len(history) {
		return nil
	}
	if err := r.save(ctx, user, next); err != nil {
		return err
	}
	r.s.cache.Set(r.category(user), searchHistoryKey, next)
	return nil
}

// Clear removes the whole history document.
func (r *SearchHistory) Clear(ctx context.Context, user string) error {
	ns := storage.UserNamespace(user)
	unlock := r.s.locks.lock(docLockKey(ns, DocSearchHistory))
	defer unlock()

	if err := r.s.backend.Delete(ctx, ns, DocSearchHistory); err != nil {
		return fmt.Errorf("failed to delete search history: %w", err)
	}
	r.s.cache.ClearCategory(r.category(user))
	return nil
}

func (r *SearchHistory) load(ctx context.Context, user string) ([]string, error) {
	raw, err := r.s.backend.Get(ctx, storage.UserNamespace(user), DocSearchHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	if raw == nil {
		return []string{}, nil
	}
	var history []string
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("corrupt search history document: %w", err)
	}
	return history, nil
}

func (r *SearchHistory) save(ctx context.Context, user string, history []string) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal search history: %w", err)
	}
	if err := r.s.backend.Set(ctx, storage.UserNamespace(user), DocSearchHistory, raw); err != nil {
		return fmt.Errorf("failed to save search history: %w", err)
	}
	return nil
}
