package manager

import "errors"

var (
	// ErrUserExists is returned when registering a username that is
	// already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned by operations on a missing account.
	ErrUserNotFound = errors.New("user not found")

	// ErrProtectedUser is returned for mutations of the env-provisioned
	// owner account.
	ErrProtectedUser = errors.New("user is protected")
)
