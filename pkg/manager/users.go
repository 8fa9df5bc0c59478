package manager

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/records"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

// IsOwner reports whether username names the env-provisioned owner
// account.
func (m *Manager) IsOwner(username string) bool {
	return m.cfg.Auth.OwnerUsername != "" && username == m.cfg.Auth.OwnerUsername
}

// ensureOwner writes the owner profile from the environment credentials.
// Runs at startup and after a reset; a password change in the environment
// takes effect on the next start.
func (m *Manager) ensureOwner(ctx context.Context) error {
	if m.cfg.Auth.OwnerUsername == "" {
		return nil
	}

	existing, err := m.Users.Get(ctx, m.cfg.Auth.OwnerUsername)
	if err != nil {
		return err
	}
	profile := &model.UserProfile{
		Username:  m.cfg.Auth.OwnerUsername,
		Password:  m.cfg.Auth.OwnerPassword,
		CreatedAt: time.Now().UnixMilli(),
		Role:      model.RoleOwner,
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
		profile.LoginCount = existing.LoginCount
		profile.FirstLoginAt = existing.FirstLoginAt
		profile.LastLoginAt = existing.LastLoginAt
	}
	return m.Users.Set(ctx, profile)
}

// Register creates a new account. The username must be free and must not
// collide with the owner account.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	if m.IsOwner(username) {
		return ErrUserExists
	}

	exists, err := m.Users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	return m.Users.Set(ctx, &model.UserProfile{
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UnixMilli(),
		Role:      model.RoleUser,
	})
}

// CheckPassword verifies credentials. Banned accounts fail regardless of
// password.
func (m *Manager) CheckPassword(ctx context.Context, username, password string) (bool, error) {
	profile, err := m.Users.Get(ctx, username)
	if err != nil {
		return false, err
	}
	if profile == nil || profile.Banned {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(profile.Password), []byte(password)) == 1, nil
}

// RecordLogin bumps the login counters after successful authentication.
func (m *Manager) RecordLogin(ctx context.Context, username string) error {
	return m.Users.RecordLogin(ctx, username)
}

// ChangePassword replaces an account's password. The owner's password
// comes from the environment and cannot be changed here.
func (m *Manager) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}
	if m.IsOwner(username) {
		return ErrProtectedUser
	}

	profile, err := m.Users.Get(ctx, username)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrUserNotFound
	}
	profile.Password = newPassword
	return m.Users.Set(ctx, profile)
}

// DeleteUser removes an account and everything it stored.
func (m *Manager) DeleteUser(ctx context.Context, username string) error {
	if m.IsOwner(username) {
		return ErrProtectedUser
	}

	exists, err := m.Users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	if err := m.backend.DeleteNamespace(ctx, storage.UserNamespace(username)); err != nil {
		return fmt.Errorf("failed to delete data of %s: %w", username, err)
	}
	m.dropUserCaches(username)
	return nil
}

// WipeUserData clears an account's stored content but keeps the account
// itself.
func (m *Manager) WipeUserData(ctx context.Context, username string) error {
	exists, err := m.Users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	for _, doc := range records.UserDocuments() {
		if doc == records.DocProfile {
			continue
		}
		if err := m.backend.Delete(ctx, storage.UserNamespace(username), doc); err != nil {
			return fmt.Errorf("failed to wipe %s of %s: %w", doc, username, err)
		}
	}
	m.dropUserCaches(username)
	return nil
}

// SetUserBanned flips an account's banned flag. The owner cannot be
// banned.
func (m *Manager) SetUserBanned(ctx context.Context, username string, banned bool) error {
	if m.IsOwner(username) {
		return ErrProtectedUser
	}

	profile, err := m.Users.Get(ctx, username)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrUserNotFound
	}
	profile.Banned = banned
	return m.Users.Set(ctx, profile)
}

func (m *Manager) dropUserCaches(username string) {
	m.store.DropUserCaches(username)
	m.Stats.InvalidateUser(username)
}
