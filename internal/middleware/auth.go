package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edumind/auth-service/internal/domain"
	"github.com/edumind/auth-service/internal/handler"
	"github.com/edumind/auth-service/internal/service"
	"github.com/edumind/auth-service/pkg/response"
)

// Auth validates the session and attaches the resolved user to the
// context. Credentials come from the access-token cookie, or from an
// Authorization Bearer header for service-to-service calls.
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		user, err := authService.Verify(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		c.Set(handler.UserKey, user)
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated
// user holds at least one of the given roles.
func RequireRole(authService service.AuthService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		for _, role := range roles {
			if authService.HasRole(user, role) {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Insufficient role")
		c.Abort()
	}
}

// RequirePermission allows the request through only when the
// authenticated user holds the named permission.
func RequirePermission(authService service.AuthService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		if !authService.HasPermission(user, permission) {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(handler.UserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(handler.AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	const bearerPrefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return authHeader[len(bearerPrefix):]
	}
	return ""
}
