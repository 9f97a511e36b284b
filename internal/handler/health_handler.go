package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumind/auth-service/pkg/database"
	"github.com/edumind/auth-service/pkg/redis"
	"github.com/edumind/auth-service/pkg/response"
)

// HealthHandler handles health and readiness probes. Either dependency
// may be nil when the corresponding in-memory backend is configured.
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redisClient,
		version: version,
	}
}

// Health handles GET /health. Liveness only; no dependency checks.
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /ready. Verifies the configured backends respond.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			checks["redis"] = "unavailable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, gin.H{
		"ready":  ready,
		"checks": checks,
	})
}
