package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumind/auth-service/internal/service"
	"github.com/edumind/auth-service/pkg/logger"
	"github.com/edumind/auth-service/pkg/response"

	"go.uber.org/zap"
)

// TenantHandler handles tenant read requests. Tenant provisioning is
// owned by a separate admin surface, so this handler is read-only.
type TenantHandler struct {
	authService service.AuthService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(authService service.AuthService) *TenantHandler {
	return &TenantHandler{authService: authService}
}

// GetByID handles GET /api/v1/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Tenant ID is required")
		return
	}

	tenant, err := h.authService.GetTenant(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			response.NotFound(c, "Tenant not found")
			return
		}
		logger.Get().Error("tenant lookup failed", zap.Error(err), zap.String("tenant_id", id))
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// List handles GET /api/v1/tenants
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.authService.ListTenants(c.Request.Context())
	if err != nil {
		logger.Get().Error("tenant list failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusOK, tenants)
}
