package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edumind/auth-service/internal/domain"
	"github.com/edumind/auth-service/internal/repository"
)

type testEnv struct {
	svc     AuthService
	users   *repository.MemoryUserRepository
	tenants *repository.MemoryTenantRepository
	refresh *repository.MemoryRefreshTokenRepository
}

func newTestEnv(t *testing.T, cfg *AuthServiceConfig) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = &AuthServiceConfig{}
	}
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = "test-access-secret"
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = "test-refresh-secret"
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "test-issuer"
	}

	env := &testEnv{
		users:   repository.NewMemoryUserRepository(),
		tenants: repository.NewMemoryTenantRepository(),
		refresh: repository.NewMemoryRefreshTokenRepository(),
	}
	env.svc = NewAuthService(env.users, env.tenants, env.refresh, cfg)
	return env
}

func (e *testEnv) addUser(t *testing.T, user *domain.User, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() error = %v", err)
	}
	user.PasswordHash = string(hash)
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("users.Create() error = %v", err)
	}
}

func testUser(id, email, tenantID string) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    email,
		TenantID: tenantID,
		Roles:    []string{"teacher"},
		Permissions: []string{
			"courses.read",
		},
		Metadata: domain.UserMetadata{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
			IsActive:  true,
		},
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")

	inactive := testUser("usr-2", "bob@example.org", "tnt-1")
	inactive.Metadata.IsActive = false
	env.addUser(t, inactive, "Password1!")

	t.Run("successful authentication", func(t *testing.T) {
		user, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if pair.AccessToken == "" {
			t.Error("Authenticate() AccessToken is empty")
		}
		if pair.RefreshToken == "" {
			t.Error("Authenticate() RefreshToken is empty")
		}
		if user.ID != "usr-1" {
			t.Errorf("Authenticate() user.ID = %v, want usr-1", user.ID)
		}
		if user.Metadata.LoginCount != 1 {
			t.Errorf("Authenticate() LoginCount = %v, want 1", user.Metadata.LoginCount)
		}
		if user.Metadata.LastLoginAt == nil {
			t.Error("Authenticate() LastLoginAt not set")
		}
	})

	t.Run("matching tenant accepted", func(t *testing.T) {
		_, _, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "tnt-1")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.svc.Authenticate(context.Background(), "alice@example.org", "WrongPassword!", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := env.svc.Authenticate(context.Background(), "nobody@example.org", "Password1!", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("tenant mismatch is indistinguishable from bad credentials", func(t *testing.T) {
		_, _, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "tnt-other")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		_, _, err := env.svc.Authenticate(context.Background(), "bob@example.org", "Password1!", "")
		if !errors.Is(err, ErrUserInactive) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrUserInactive)
		}
	})

	t.Run("login count accumulates", func(t *testing.T) {
		user, _, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.Metadata.LoginCount != 3 {
			t.Errorf("Authenticate() LoginCount = %v, want 3", user.Metadata.LoginCount)
		}
	})
}

func TestAuthService_Verify(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")

	_, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	t.Run("valid access token resolves the user", func(t *testing.T) {
		user, err := env.svc.Verify(context.Background(), pair.AccessToken)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if user.ID != "usr-1" {
			t.Errorf("Verify() user.ID = %v, want usr-1", user.ID)
		}
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := env.svc.Verify(context.Background(), pair.RefreshToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.svc.Verify(context.Background(), "not-a-jwt")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := newTestEnv(t, &AuthServiceConfig{
			AccessTokenSecret:  "some-other-access-secret",
			RefreshTokenSecret: "some-other-refresh-secret",
		})
		other.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")
		_, otherPair, err := other.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		_, err = env.svc.Verify(context.Background(), otherPair.AccessToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired access token", func(t *testing.T) {
		expired := newTestEnv(t, &AuthServiceConfig{
			AccessTokenTTL: -time.Minute,
		})
		expired.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")
		_, expiredPair, err := expired.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		_, err = expired.svc.Verify(context.Background(), expiredPair.AccessToken)
		if !errors.Is(err, ErrTokenExpired) {
			t.Errorf("Verify() error = %v, want %v", err, ErrTokenExpired)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")

	t.Run("refresh issues a new pair without counting as a login", func(t *testing.T) {
		_, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		user, newPair, err := env.svc.Refresh(context.Background(), pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if newPair.AccessToken == "" || newPair.RefreshToken == "" {
			t.Error("Refresh() returned empty tokens")
		}
		if newPair.RefreshToken == pair.RefreshToken {
			t.Error("Refresh() reissued the same refresh token")
		}
		if user.Metadata.LoginCount != 1 {
			t.Errorf("Refresh() LoginCount = %v, want 1", user.Metadata.LoginCount)
		}
	})

	t.Run("refresh tokens are single use", func(t *testing.T) {
		_, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		if _, _, err := env.svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
			t.Fatalf("Refresh() first use error = %v", err)
		}
		_, _, err = env.svc.Refresh(context.Background(), pair.RefreshToken)
		if !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("Refresh() second use error = %v, want %v", err, ErrTokenRevoked)
		}
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		_, _, err = env.svc.Refresh(context.Background(), pair.AccessToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Refresh() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("bad signature does not consume anything", func(t *testing.T) {
		_, _, err := env.svc.Refresh(context.Background(), "not-a-jwt")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Refresh() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("inactive user cannot refresh", func(t *testing.T) {
		local := newTestEnv(t, nil)
		local.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")
		_, pair, err := local.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		user, err := local.users.GetByID(context.Background(), "usr-1")
		if err != nil {
			t.Fatalf("users.GetByID() error = %v", err)
		}
		user.Metadata.IsActive = false
		if err := local.users.Update(context.Background(), user); err != nil {
			t.Fatalf("users.Update() error = %v", err)
		}

		_, _, err = local.svc.Refresh(context.Background(), pair.RefreshToken)
		if !errors.Is(err, ErrUserInactive) {
			t.Errorf("Refresh() error = %v, want %v", err, ErrUserInactive)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addUser(t, testUser("usr-1", "alice@example.org", "tnt-1"), "Password1!")

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		_, pair, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		if err := env.svc.Logout(context.Background(), pair.RefreshToken); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		_, _, err = env.svc.Refresh(context.Background(), pair.RefreshToken)
		if !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("Refresh() after logout error = %v, want %v", err, ErrTokenRevoked)
		}
	})

	t.Run("logout without a token is a no-op", func(t *testing.T) {
		if err := env.svc.Logout(context.Background(), ""); err != nil {
			t.Errorf("Logout() error = %v", err)
		}
	})

	t.Run("logout all revokes every session", func(t *testing.T) {
		_, first, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		_, second, err := env.svc.Authenticate(context.Background(), "alice@example.org", "Password1!", "")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		if err := env.svc.LogoutAll(context.Background(), "usr-1"); err != nil {
			t.Fatalf("LogoutAll() error = %v", err)
		}

		if _, _, err := env.svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("Refresh() first session error = %v, want %v", err, ErrTokenRevoked)
		}
		if _, _, err := env.svc.Refresh(context.Background(), second.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("Refresh() second session error = %v, want %v", err, ErrTokenRevoked)
		}
	})
}

func TestAuthService_HasPermission(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		user       *domain.User
		permission string
		want       bool
	}{
		{
			name:       "literal permission",
			user:       &domain.User{Permissions: []string{"courses.read"}},
			permission: "courses.read",
			want:       true,
		},
		{
			name:       "wildcard permission",
			user:       &domain.User{Permissions: []string{domain.Wildcard}},
			permission: "anything.at.all",
			want:       true,
		},
		{
			name:       "admin role implies everything",
			user:       &domain.User{Roles: []string{domain.RoleAdmin}},
			permission: "courses.delete",
			want:       true,
		},
		{
			name:       "superuser role implies everything",
			user:       &domain.User{Roles: []string{domain.RoleSuperuser}},
			permission: "courses.delete",
			want:       true,
		},
		{
			name:       "missing permission",
			user:       &domain.User{Roles: []string{"teacher"}, Permissions: []string{"courses.read"}},
			permission: "courses.delete",
			want:       false,
		},
		{
			name:       "nil user",
			user:       nil,
			permission: "courses.read",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.svc.HasPermission(tt.user, tt.permission); got != tt.want {
				t.Errorf("HasPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthService_HasRole(t *testing.T) {
	env := newTestEnv(t, nil)
	user := &domain.User{Roles: []string{"teacher", "grader"}}

	if !env.svc.HasRole(user, "grader") {
		t.Error("HasRole(grader) = false, want true")
	}
	if env.svc.HasRole(user, "admin") {
		t.Error("HasRole(admin) = true, want false")
	}
	if env.svc.HasRole(nil, "teacher") {
		t.Error("HasRole(nil user) = true, want false")
	}
}

func TestAuthService_GetTenant(t *testing.T) {
	env := newTestEnv(t, nil)
	tenant := &domain.Tenant{
		ID:     "tnt-1",
		Name:   "Acme Education",
		Status: domain.TenantActive,
	}
	if err := env.tenants.Create(context.Background(), tenant); err != nil {
		t.Fatalf("tenants.Create() error = %v", err)
	}

	t.Run("found", func(t *testing.T) {
		got, err := env.svc.GetTenant(context.Background(), "tnt-1")
		if err != nil {
			t.Fatalf("GetTenant() error = %v", err)
		}
		if got.Name != "Acme Education" {
			t.Errorf("GetTenant() Name = %v, want Acme Education", got.Name)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := env.svc.GetTenant(context.Background(), "tnt-missing")
		if !errors.Is(err, ErrTenantNotFound) {
			t.Errorf("GetTenant() error = %v, want %v", err, ErrTenantNotFound)
		}
	})
}
