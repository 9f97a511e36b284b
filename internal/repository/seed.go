package repository

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edumind/auth-service/internal/domain"
)

// Seed populates the user and tenant repositories with demo data for
// the in-memory backend. Passwords are bcrypt-hashed per user; the demo
// credentials are admin@example.org / Admin123! and
// teacher@example.org / Teacher123!.
func Seed(ctx context.Context, users UserRepository, tenants TenantRepository) error {
	now := time.Now()

	demoTenants := []*domain.Tenant{
		{
			ID:     "tnt-acme-edu",
			Name:   "Acme Education",
			Domain: "acme.example.org",
			Settings: domain.TenantSettings{
				PrimaryColor: "#1f6feb",
				Features:     map[string]bool{"cpd_tracking": true, "analytics": true},
				Limits:       domain.TenantLimits{MaxUsers: 500, MaxStorageMB: 10240, MaxAPICalls: 100000},
			},
			Status:   domain.TenantActive,
			Metadata: domain.TenantMetadata{CreatedAt: now, UpdatedAt: now},
		},
		{
			ID:     "tnt-northfield",
			Name:   "Northfield Schools",
			Domain: "northfield.example.org",
			Settings: domain.TenantSettings{
				PrimaryColor: "#2da44e",
				Features:     map[string]bool{"cpd_tracking": false},
				Limits:       domain.TenantLimits{MaxUsers: 50, MaxStorageMB: 1024, MaxAPICalls: 10000},
			},
			Status:   domain.TenantTrial,
			Metadata: domain.TenantMetadata{CreatedAt: now, UpdatedAt: now},
		},
	}

	for _, tenant := range demoTenants {
		if err := tenants.Create(ctx, tenant); err != nil {
			return err
		}
	}

	demoUsers := []struct {
		user     *domain.User
		password string
	}{
		{
			user: &domain.User{
				ID:          "usr-admin",
				Email:       "admin@example.org",
				TenantID:    "tnt-acme-edu",
				Roles:       []string{domain.RoleAdmin},
				Permissions: []string{domain.Wildcard},
				Profile:     domain.Profile{FirstName: "Ada", LastName: "Morgan"},
				Metadata:    domain.UserMetadata{CreatedAt: now, UpdatedAt: now, IsActive: true},
			},
			password: "Admin123!",
		},
		{
			user: &domain.User{
				ID:          "usr-teacher",
				Email:       "teacher@example.org",
				TenantID:    "tnt-acme-edu",
				Roles:       []string{"teacher"},
				Permissions: []string{"courses.read", "courses.enroll"},
				Profile: domain.Profile{
					FirstName:   "Noah",
					LastName:    "Reyes",
					Preferences: map[string]string{"locale": "en-GB"},
				},
				Metadata: domain.UserMetadata{CreatedAt: now, UpdatedAt: now, IsActive: true},
			},
			password: "Teacher123!",
		},
	}

	for _, seed := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		seed.user.PasswordHash = string(hash)
		if err := users.Create(ctx, seed.user); err != nil {
			return err
		}
	}
	return nil
}
