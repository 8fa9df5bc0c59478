package model

// Role is a user's permission level.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserProfile is the stored account record for one user.
//
// Password is stored in plaintext. This mirrors the format the existing
// deployments already have on disk; hashing it is an application-level
// migration, not something this layer can do unilaterally without breaking
// every existing data directory.
type UserProfile struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// CreatedAt is Unix milliseconds of account creation.
	CreatedAt int64 `json:"created_at"`

	LoginCount   int   `json:"login_count"`
	FirstLoginAt int64 `json:"first_login_at,omitempty"`
	LastLoginAt  int64 `json:"last_login_at,omitempty"`

	Role   Role `json:"role"`
	Banned bool `json:"banned,omitempty"`
}
