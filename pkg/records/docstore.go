package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kelpgrid/driftwatch/pkg/cache"
	"github.com/kelpgrid/driftwatch/pkg/observability"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

// Per-user document names. Export and import operate on exactly this set.
const (
	DocPlayRecords   = "playrecords"
	DocFavorites     = "favorites"
	DocSearchHistory = "searchhistory"
	DocSkipConfigs   = "skipconfigs"
	DocEpisodeSkips  = "episodeskipconfigs"
	DocProfile       = "profile"
)

// UserDocuments returns the fixed set of per-user document names.
func UserDocuments() []string {
	return []string{
		DocPlayRecords,
		DocFavorites,
		DocSearchHistory,
		DocSkipConfigs,
		DocEpisodeSkips,
		DocProfile,
	}
}

// Store is the shared plumbing every repository is built on: the durable
// backend, the TTL cache and the per-document write locks.
type Store struct {
	backend storage.Backend
	cache   *cache.Manager
	locks   keyedMutex
	log     *observability.Logger
}

// NewStore creates the shared repository plumbing. A nil logger discards
// log output.
func NewStore(backend storage.Backend, c *cache.Manager, log *observability.Logger) *Store {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Store{
		backend: backend,
		cache:   c,
		log:     log,
	}
}

// Backend exposes the underlying backend for callers that need raw
// document access (export/import, aggregation discovery).
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// Cache exposes the cache manager for category-level invalidation.
func (s *Store) Cache() *cache.Manager {
	return s.cache
}

// DropUserCaches removes every cached entry belonging to one user. Called
// after a user's namespace is deleted or bulk-rewritten out of band.
func (s *Store) DropUserCaches(username string) {
	for _, doc := range UserDocuments() {
		s.cache.ClearCategory(docCategory(doc, username))
	}
	s.cache.Delete(userProfileCategory, username)
}

// docCategory names the cache category of one user's document, e.g.
// "playrecords_alice".
func docCategory(doc, user string) string {
	return doc + "_" + user
}

// docLockKey names the per-document mutex guarding a read-modify-write.
func docLockKey(ns, doc string) string {
	return ns + "/" + doc
}

// loadDoc reads and decodes a whole keyed document. A missing document is
// an empty map.
func loadDoc[T any](ctx context.Context, s *Store, ns, doc string) (map[string]*T, error) {
	raw, err := s.backend.Get(ctx, ns, doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T)
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("corrupt %s document in %s: %w", doc, ns, err)
	}
	return out, nil
}

// saveDoc encodes and writes a whole keyed document back.
func saveDoc[T any](ctx context.Context, s *Store, ns, doc string, m map[string]*T) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", doc, err)
	}
	return s.backend.Set(ctx, ns, doc, data)
}

// getAll reads a user's whole document and batch-populates the cache.
func getAll[T any](ctx context.Context, s *Store, user, doc string) (map[string]*T, error) {
	m, err := loadDoc[T](ctx, s, storage.UserNamespace(user), doc)
	if err != nil {
		return nil, err
	}

	entries := make([]cache.Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, cache.Entry{Key: k, Value: v})
	}
	s.cache.MSet(docCategory(doc, user), entries)

	return m, nil
}

// getOne returns one entry of a user's document, going to the backend only
// on a cache miss. Missing entries return nil. A cached value of the wrong
// type is treated as a miss, never as an error.
func getOne[T any](ctx context.Context, s *Store, user, doc, key string) (*T, error) {
	if v, ok := s.cache.Get(docCategory(doc, user), key); ok {
		if t, ok := v.(*T); ok {
			return t, nil
		}
	}

	m, err := getAll[T](ctx, s, user, doc)
	if err != nil {
		return nil, err
	}
	return m[key], nil
}

// setOne merges one entry into a user's document under the per-document
// lock and writes the cache through on success.
func setOne[T any](ctx context.Context, s *Store, user, doc, key string, v *T) error {
	ns := storage.UserNamespace(user)
	unlock := s.locks.lock(docLockKey(ns, doc))
	defer unlock()

	m, err := loadDoc[T](ctx, s, ns, doc)
	if err != nil {
		return err
	}
	m[key] = v
	if err := saveDoc(ctx, s, ns, doc, m); err != nil {
		return err
	}

	s.cache.Set(docCategory(doc, user), key, v)
	return nil
}

// deleteOne removes one entry from a user's document and from the cache.
func deleteOne[T any](ctx context.Context, s *Store, user, doc, key string) error {
	ns := storage.UserNamespace(user)
	unlock := s.locks.lock(docLockKey(ns, doc))
	defer unlock()

	m, err := loadDoc[T](ctx, s, ns, doc)
	if err != nil {
		return err
	}
	if _, ok := m[key]; ok {
		delete(m, key)
		if err := saveDoc(ctx, s, ns, doc, m); err != nil {
			return err
		}
	}

	s.cache.Delete(docCategory(doc, user), key)
	return nil
}

// clearDoc removes a user's whole document and its cache category.
func clearDoc(ctx context.Context, s *Store, user, doc string) error {
	ns := storage.UserNamespace(user)
	unlock := s.locks.lock(docLockKey(ns, doc))
	defer unlock()

	if err := s.backend.Delete(ctx, ns, doc); err != nil {
		return err
	}
	s.cache.ClearCategory(docCategory(doc, user))
	return nil
}

// keyedMutex hands out one mutex per document path so overlapping
// read-modify-write cycles on the same document cannot lose writes.
// Entries are reference-counted and removed when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
