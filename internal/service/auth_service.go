package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/edumind/auth-service/internal/domain"
	"github.com/edumind/auth-service/internal/metrics"
	"github.com/edumind/auth-service/internal/repository"
	"github.com/edumind/auth-service/pkg/telemetry"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked or already used")
)

// AuthServiceConfig holds configuration for AuthService. Access and
// refresh tokens are signed with separate secrets so that one can never
// stand in for the other.
type AuthServiceConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Authenticate verifies email/password (and tenant, when supplied)
	// and issues a token pair. Updates last-login metadata on success.
	Authenticate(ctx context.Context, email, password, tenantID string) (*domain.User, *domain.TokenPair, error)
	// IssueTokens produces a token pair for the user and records the
	// refresh token server-side.
	IssueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error)
	// Refresh exchanges a valid, unconsumed refresh token for a new pair.
	// Refresh tokens are single-use.
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error)
	// Verify validates an access token and resolves its user.
	Verify(ctx context.Context, accessToken string) (*domain.User, error)
	// Logout revokes the given refresh token server-side, best effort.
	Logout(ctx context.Context, refreshToken string) error
	// LogoutAll revokes every outstanding refresh token of a subject.
	LogoutAll(ctx context.Context, subjectID string) error
	// HasPermission reports whether the user may perform the operation.
	HasPermission(user *domain.User, permission string) bool
	// HasRole reports whether the user holds the role.
	HasRole(user *domain.User, role string) bool
	// GetTenant retrieves a tenant by ID.
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	// ListTenants retrieves all tenants.
	ListTenants(ctx context.Context) ([]*domain.Tenant, error)
}

// authService implements AuthService
type authService struct {
	userRepo    repository.UserRepository
	tenantRepo  repository.TenantRepository
	refreshRepo repository.RefreshTokenRepository
	config      *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	refreshRepo repository.RefreshTokenRepository,
	config *AuthServiceConfig,
) AuthService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = time.Hour
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	_ = metrics.Init()
	return &authService{
		userRepo:    userRepo,
		tenantRepo:  tenantRepo,
		refreshRepo: refreshRepo,
		config:      config,
	}
}

// Authenticate verifies credentials and issues a token pair
func (s *authService) Authenticate(ctx context.Context, email, password, tenantID string) (*domain.User, *domain.TokenPair, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.authenticate")
	defer span.End()

	span.SetAttributes(attribute.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	// Unknown email, tenant mismatch, and wrong password all collapse
	// into the same error so callers can't probe which check failed.
	if user == nil {
		metrics.LoginFailures.Inc(ctx)
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, nil, ErrInvalidCredentials
	}
	if tenantID != "" && tenantID != user.TenantID {
		metrics.LoginFailures.Inc(ctx)
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, nil, ErrInvalidCredentials
	}

	if !user.Metadata.IsActive {
		metrics.LoginFailures.Inc(ctx)
		span.SetStatus(codes.Error, "user inactive")
		return nil, nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginFailures.Inc(ctx)
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.Metadata.LastLoginAt = &now
	user.Metadata.LoginCount++
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	metrics.LoginsTotal.Inc(ctx)
	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, pair, nil
}

// IssueTokens generates an access/refresh token pair for the user
func (s *authService) IssueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.issue_tokens")
	defer span.End()

	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenTTL)
	refreshExpiry := now.Add(s.config.RefreshTokenTTL)

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         user.ID,
		"email":       user.Email,
		"tenant_id":   user.TenantID,
		"roles":       user.Roles,
		"permissions": user.Permissions,
		"type":        domain.TokenTypeAccess,
		"jti":         uuid.New().String(),
		"iss":         s.config.Issuer,
		"iat":         now.Unix(),
		"exp":         accessExpiry.Unix(),
	})
	accessTokenString, err := accessToken.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID,
		"tenant_id": user.TenantID,
		"type":      domain.TokenTypeRefresh,
		"jti":       uuid.New().String(),
		"iss":       s.config.Issuer,
		"iat":       now.Unix(),
		"exp":       refreshExpiry.Unix(),
	})
	refreshTokenString, err := refreshToken.SignedString([]byte(s.config.RefreshTokenSecret))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The store entry, not the signature, is what makes a refresh token
	// redeemable; deleting it revokes the token.
	record := &domain.RefreshTokenRecord{
		SubjectID: user.ID,
		TenantID:  user.TenantID,
		ExpiresAt: refreshExpiry,
	}
	if err := s.refreshRepo.Save(ctx, refreshTokenString, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.TokenPairsIssued.Inc(ctx)
	span.SetStatus(codes.Ok, "")
	return &domain.TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	claims, err := s.parseToken(refreshToken, s.config.RefreshTokenSecret, domain.TokenTypeRefresh)
	if err != nil {
		metrics.RefreshFailures.Inc(ctx)
		span.SetStatus(codes.Error, "invalid refresh token")
		return nil, nil, err
	}

	// Atomic fetch-and-delete: of two racing refreshes on the same
	// token, only one gets the record.
	record, err := s.refreshRepo.Consume(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	if record == nil {
		metrics.RefreshFailures.Inc(ctx)
		span.SetStatus(codes.Error, "token revoked")
		return nil, nil, ErrTokenRevoked
	}
	if time.Now().After(record.ExpiresAt) {
		metrics.RefreshFailures.Inc(ctx)
		span.SetStatus(codes.Error, "token expired")
		return nil, nil, ErrTokenExpired
	}

	subject, _ := claims["sub"].(string)
	span.SetAttributes(attribute.String("user_id", subject))

	user, err := s.userRepo.GetByID(ctx, record.SubjectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	if user == nil {
		metrics.RefreshFailures.Inc(ctx)
		span.SetStatus(codes.Error, "user not found")
		return nil, nil, ErrUserNotFound
	}
	if !user.Metadata.IsActive {
		metrics.RefreshFailures.Inc(ctx)
		span.SetStatus(codes.Error, "user inactive")
		return nil, nil, ErrUserInactive
	}

	// A refresh is not a login: last-login metadata stays untouched.
	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	metrics.RefreshesTotal.Inc(ctx)
	span.SetStatus(codes.Ok, "")
	return user, pair, nil
}

// Verify validates an access token and resolves the user
func (s *authService) Verify(ctx context.Context, accessToken string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.verify")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.VerifyDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}()

	claims, err := s.parseToken(accessToken, s.config.AccessTokenSecret, domain.TokenTypeAccess)
	if err != nil {
		metrics.VerifyFailures.Inc(ctx)
		span.SetStatus(codes.Error, "invalid access token")
		return nil, err
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		metrics.VerifyFailures.Inc(ctx)
		span.SetStatus(codes.Error, "missing subject")
		return nil, ErrInvalidToken
	}
	span.SetAttributes(attribute.String("user_id", subject))

	user, err := s.userRepo.GetByID(ctx, subject)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		metrics.VerifyFailures.Inc(ctx)
		span.SetStatus(codes.Error, "user not found")
		return nil, ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Logout revokes the refresh token server-side. Unknown tokens are not
// an error; the client is logged out either way.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	if refreshToken == "" {
		span.SetStatus(codes.Ok, "no token presented")
		return nil
	}
	if err := s.refreshRepo.Delete(ctx, refreshToken); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	metrics.RevocationsTotal.Inc(ctx)
	span.SetStatus(codes.Ok, "")
	return nil
}

// LogoutAll revokes every refresh token belonging to the subject
func (s *authService) LogoutAll(ctx context.Context, subjectID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout_all")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", subjectID))

	if err := s.refreshRepo.DeleteBySubject(ctx, subjectID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	metrics.RevocationsTotal.Inc(ctx)
	span.SetStatus(codes.Ok, "")
	return nil
}

// HasPermission reports whether the user may perform the named operation
func (s *authService) HasPermission(user *domain.User, permission string) bool {
	if user == nil {
		return false
	}
	return user.HasPermission(permission)
}

// HasRole reports whether the user holds the given role
func (s *authService) HasRole(user *domain.User, role string) bool {
	if user == nil {
		return false
	}
	return user.HasRole(role)
}

// GetTenant retrieves a tenant by ID
func (s *authService) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_tenant")
	defer span.End()

	span.SetAttributes(attribute.String("tenant_id", id))

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if tenant == nil {
		span.SetStatus(codes.Error, "tenant not found")
		return nil, ErrTenantNotFound
	}

	span.SetStatus(codes.Ok, "")
	return tenant, nil
}

// ListTenants retrieves all tenants
func (s *authService) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.list_tenants")
	defer span.End()

	tenants, err := s.tenantRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("tenant_count", len(tenants)))
	span.SetStatus(codes.Ok, "")
	return tenants, nil
}

// parseToken validates signature, expiry, and the type claim. Both the
// secret and the type must match for a token to be accepted.
func (s *authService) parseToken(tokenString, secret, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
