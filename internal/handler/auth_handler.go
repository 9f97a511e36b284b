package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edumind/auth-service/internal/domain"
	"github.com/edumind/auth-service/internal/dto"
	"github.com/edumind/auth-service/internal/service"
	"github.com/edumind/auth-service/pkg/logger"
	"github.com/edumind/auth-service/pkg/response"
	"github.com/edumind/auth-service/pkg/telemetry"

	"go.uber.org/zap"
)

const (
	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie is the cookie carrying the refresh token.
	RefreshTokenCookie = "refresh_token"

	// UserKey is the gin context key under which auth middleware stores
	// the authenticated user.
	UserKey = "auth_user"
)

// CookieConfig controls how session cookies are issued.
type CookieConfig struct {
	Domain        string
	Secure        bool
	AccessMaxAge  int
	RefreshMaxAge int
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, pair, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password, req.TenantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, service.ErrUserInactive):
			response.Forbidden(c, "Account is inactive")
		default:
			logger.Get().Error("login failed",
				zap.Error(err),
				zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())))
			response.InternalError(c)
		}
		return
	}

	tenant, err := h.authService.GetTenant(c.Request.Context(), user.TenantID)
	if err != nil && !errors.Is(err, service.ErrTenantNotFound) {
		logger.Get().Error("tenant lookup failed", zap.Error(err), zap.String("tenant_id", user.TenantID))
		response.InternalError(c)
		return
	}

	h.setSessionCookies(c, pair)
	response.Success(c, http.StatusOK, dto.SessionResponse{
		User:   dto.NewUserResponse(user),
		Tenant: tenant,
	})
}

// Logout handles POST /api/v1/auth/logout. Always succeeds from the
// client's point of view; revocation is best effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookie)
	if refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		logger.Get().Warn("refresh token revocation failed", zap.Error(err))
	}

	h.clearSessionCookies(c)
	response.Message(c, http.StatusOK, "Logged out")
}

// LogoutAll handles POST /api/v1/auth/logout-all. Revokes every
// outstanding refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), user.ID); err != nil {
		logger.Get().Error("logout all failed", zap.Error(err), zap.String("user_id", user.ID))
		response.InternalError(c)
		return
	}

	h.clearSessionCookies(c)
	response.Message(c, http.StatusOK, "Logged out everywhere")
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	tenant, err := h.authService.GetTenant(c.Request.Context(), user.TenantID)
	if err != nil && !errors.Is(err, service.ErrTenantNotFound) {
		logger.Get().Error("tenant lookup failed", zap.Error(err), zap.String("tenant_id", user.TenantID))
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusOK, dto.SessionResponse{
		User:   dto.NewUserResponse(user),
		Tenant: tenant,
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token comes
// from the request body or, failing that, the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = c.Cookie(RefreshTokenCookie)
	}
	if refreshToken == "" {
		response.Error(c, http.StatusBadRequest, "MISSING_TOKEN", "Refresh token is required")
		return
	}

	user, pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token has expired")
		case errors.Is(err, service.ErrTokenRevoked):
			response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Refresh token is no longer valid")
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, service.ErrUserInactive):
			response.Forbidden(c, "Account is inactive")
		default:
			logger.Get().Error("refresh failed",
				zap.Error(err),
				zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())))
			response.InternalError(c)
		}
		return
	}

	h.setSessionCookies(c, pair)
	response.Success(c, http.StatusOK, dto.NewUserResponse(user))
}

// ValidateToken handles POST /api/v1/auth/validate. Accepts a Bearer
// access token and returns its verified claims; meant for other
// services that need to authenticate a forwarded request.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	const bearerPrefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		response.Error(c, http.StatusBadRequest, "MISSING_TOKEN", "Authorization header with Bearer token is required")
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), authHeader[len(bearerPrefix):])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired")
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, "Invalid access token")
		default:
			logger.Get().Error("token validation failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, dto.ClaimsResponse{
		UserID:      user.ID,
		Email:       user.Email,
		TenantID:    user.TenantID,
		Roles:       user.Roles,
		Permissions: user.Permissions,
	})
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, pair *domain.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, pair.AccessToken, h.cookies.AccessMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken, h.cookies.RefreshMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func currentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}
