package domain

import (
	"time"
)

// Wildcard grants every permission when present in a user's permission set.
const Wildcard = "*"

// Roles that implicitly carry all permissions.
const (
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
)

// Profile holds display-oriented user attributes.
type Profile struct {
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// UserMetadata tracks lifecycle facts about a user account.
type UserMetadata struct {
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	LastLoginAt            *time.Time `json:"last_login_at,omitempty"`
	LoginCount             int64      `json:"login_count"`
	IsActive               bool       `json:"is_active"`
	PasswordChangeRequired bool       `json:"password_change_required"`
}

// User represents a user entity. A user belongs to exactly one tenant.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never serialize password
	TenantID     string       `json:"tenant_id"`
	Roles        []string     `json:"roles"`
	Permissions  []string     `json:"permissions"`
	Profile      Profile      `json:"profile"`
	Metadata     UserMetadata `json:"metadata"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user may perform the named operation.
// The wildcard permission and the admin/superuser roles grant everything.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == Wildcard || p == permission {
			return true
		}
	}
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSuperuser)
}
