package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

const userProfileCategory = "userprofiles"

// Users stores account profiles. Each user's profile lives in their own
// namespace as a single-object document, so listing users is a namespace
// listing rather than a document scan.
type Users struct {
	s *Store
}

// NewUsers creates the user profile repository.
func NewUsers(s *Store) *Users {
	return &Users{s: s}
}

// Get returns a user's profile, or nil when the user does not exist.
func (r *Users) Get(ctx context.Context, username string) (*model.UserProfile, error) {
	if v, ok := r.s.cache.Get(userProfileCategory, username); ok {
		if p, ok := v.(*model.UserProfile); ok {
			return p, nil
		}
	}

	raw, err := r.s.backend.Get(ctx, storage.UserNamespace(username), DocProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", username, err)
	}
	if raw == nil {
		return nil, nil
	}
	var profile model.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("corrupt profile document for %s: %w", username, err)
	}

	r.s.cache.Set(userProfileCategory, username, &profile)
	return &profile, nil
}

// Exists reports whether a profile document is stored for the username.
func (r *Users) Exists(ctx context.Context, username string) (bool, error) {
	p, err := r.Get(ctx, username)
	return p != nil, err
}

// Set writes a user's profile.
func (r *Users) Set(ctx context.Context, profile *model.UserProfile) error {
	ns := storage.UserNamespace(profile.Username)
	unlock := r.s.locks.lock(docLockKey(ns, DocProfile))
	defer unlock()

	return r.save(ctx, profile)
}

// Delete removes a user's profile document. The rest of the user's data
// is a separate concern; see WipeUserData on the facade.
func (r *Users) Delete(ctx context.Context, username string) error {
	ns := storage.UserNamespace(username)
	unlock := r.s.locks.lock(docLockKey(ns, DocProfile))
	defer unlock()

	if err := r.s.backend.Delete(ctx, ns, DocProfile); err != nil {
		return fmt.Errorf("failed to delete profile for %s: %w", username, err)
	}
	r.s.cache.Delete(userProfileCategory, username)
	return nil
}

// List returns every username with stored data, sorted.
func (r *Users) List(ctx context.Context) ([]string, error) {
	namespaces, err := r.s.backend.ListNamespaces(ctx, storage.NamespaceUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list user namespaces: %w", err)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// RecordLogin bumps the login counters on a successful sign-in. The first
// login timestamp is set once and never moves.
func (r *Users) RecordLogin(ctx context.Context, username string) error {
	ns := storage.UserNamespace(username)
	unlock := r.s.locks.lock(docLockKey(ns, DocProfile))
	defer unlock()

	profile, err := r.load(ctx, username)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("no profile for %s", username)
	}

	now := time.Now().UnixMilli()
	profile.LoginCount++
	if profile.FirstLoginAt == 0 {
		profile.FirstLoginAt = now
	}
	profile.LastLoginAt = now

	return r.save(ctx, profile)
}

// load reads the profile straight from the backend, bypassing the cache.
// Used under the document lock where a cached copy could be stale.
func (r *Users) load(ctx context.Context, username string) (*model.UserProfile, error) {
	raw, err := r.s.backend.Get(ctx, storage.UserNamespace(username), DocProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", username, err)
	}
	if raw == nil {
		return nil, nil
	}
	var profile model.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("corrupt profile document for %s: %w", username, err)
	}
	return &profile, nil
}

func (r *Users) save(ctx context.Context, profile *model.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile for %s: %w", profile.Username, err)
	}
	if err := r.s.backend.Set(ctx, storage.UserNamespace(profile.Username), DocProfile, raw); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", profile.Username, err)
	}
	r.s.cache.Set(userProfileCategory, profile.Username, profile)
	return nil
}
