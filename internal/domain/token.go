package domain

import (
	"time"
)

// Token type claims. A token signed with the right secret but the wrong
// type claim is always rejected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair represents the access/refresh credential bundle issued on
// every successful authentication or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expires
}

// RefreshTokenRecord is the server-side entry tracked for each
// outstanding refresh token. The store holding these records is the
// source of truth for revocation: a valid signature alone is not enough.
type RefreshTokenRecord struct {
	SubjectID string    `json:"subject_id"`
	TenantID  string    `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
