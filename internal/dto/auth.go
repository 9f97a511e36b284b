package dto

import (
	"time"

	"github.com/edumind/auth-service/internal/domain"
)

// LoginRequest represents login request. TenantID is optional; when set
// it must match the tenant of the user owning the email.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TenantID string `json:"tenant_id"`
}

// RefreshRequest represents token refresh request. The token may also
// arrive via cookie, so no binding requirement here; the handler decides.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse represents sanitized user data in responses. Timestamps
// are RFC 3339 strings; the password hash never leaves the service.
type UserResponse struct {
	ID                     string            `json:"id"`
	Email                  string            `json:"email"`
	TenantID               string            `json:"tenant_id"`
	Roles                  []string          `json:"roles"`
	Permissions            []string          `json:"permissions"`
	FirstName              string            `json:"first_name"`
	LastName               string            `json:"last_name"`
	AvatarURL              string            `json:"avatar_url,omitempty"`
	Preferences            map[string]string `json:"preferences,omitempty"`
	CreatedAt              string            `json:"created_at"`
	UpdatedAt              string            `json:"updated_at"`
	LastLoginAt            string            `json:"last_login_at,omitempty"`
	LoginCount             int64             `json:"login_count"`
	IsActive               bool              `json:"is_active"`
	PasswordChangeRequired bool              `json:"password_change_required"`
}

// NewUserResponse converts a domain User to its response form.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:                     user.ID,
		Email:                  user.Email,
		TenantID:               user.TenantID,
		Roles:                  user.Roles,
		Permissions:            user.Permissions,
		FirstName:              user.Profile.FirstName,
		LastName:               user.Profile.LastName,
		AvatarURL:              user.Profile.AvatarURL,
		Preferences:            user.Profile.Preferences,
		CreatedAt:              user.Metadata.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              user.Metadata.UpdatedAt.Format(time.RFC3339),
		LoginCount:             user.Metadata.LoginCount,
		IsActive:               user.Metadata.IsActive,
		PasswordChangeRequired: user.Metadata.PasswordChangeRequired,
	}
	if user.Metadata.LastLoginAt != nil {
		resp.LastLoginAt = user.Metadata.LastLoginAt.Format(time.RFC3339)
	}
	return resp
}

// SessionResponse represents the authenticated session returned by
// login and me.
type SessionResponse struct {
	User   UserResponse   `json:"user"`
	Tenant *domain.Tenant `json:"tenant,omitempty"`
}

// ClaimsResponse represents verified token claims, returned by the
// internal validate endpoint.
type ClaimsResponse struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	TenantID    string   `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
