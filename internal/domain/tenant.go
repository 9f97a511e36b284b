package domain

import (
	"time"
)

// TenantStatus represents the billing/lifecycle state of a tenant.
// Transitions happen outside this service; we only read the status.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantTrial     TenantStatus = "trial"
	TenantExpired   TenantStatus = "expired"
)

// TenantLimits holds numeric usage caps for a tenant.
type TenantLimits struct {
	MaxUsers     int   `json:"max_users"`
	MaxStorageMB int64 `json:"max_storage_mb"`
	MaxAPICalls  int64 `json:"max_api_calls"`
}

// TenantSettings holds per-tenant branding and feature configuration.
type TenantSettings struct {
	PrimaryColor string          `json:"primary_color,omitempty"`
	LogoURL      string          `json:"logo_url,omitempty"`
	Features     map[string]bool `json:"features,omitempty"`
	Limits       TenantLimits    `json:"limits"`
}

// TenantMetadata tracks lifecycle facts about a tenant.
type TenantMetadata struct {
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
}

// Tenant represents an isolated organizational scope.
type Tenant struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Domain   string         `json:"domain"`
	Settings TenantSettings `json:"settings"`
	Status   TenantStatus   `json:"status"`
	Metadata TenantMetadata `json:"metadata"`
}
