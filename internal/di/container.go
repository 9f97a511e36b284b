package di

import (
	"github.com/edumind/auth-service/internal/handler"
	"github.com/edumind/auth-service/internal/repository"
	"github.com/edumind/auth-service/internal/service"
	"github.com/edumind/auth-service/pkg/database"
	"github.com/edumind/auth-service/pkg/redis"
)

// ContainerConfig holds everything the container needs to assemble the
// service. DB and Redis may be nil when in-memory backends are used.
type ContainerConfig struct {
	DB            *database.PostgresDB
	Redis         *redis.Client
	UserRepo      repository.UserRepository
	TenantRepo    repository.TenantRepository
	RefreshRepo   repository.RefreshTokenRepository
	ServiceConfig *service.AuthServiceConfig
	Cookies       handler.CookieConfig
	Version       string
}

// Container wires repositories, services, and handlers together.
type Container struct {
	AuthService service.AuthService

	AuthHandler   *handler.AuthHandler
	TenantHandler *handler.TenantHandler
	HealthHandler *handler.HealthHandler
}

// NewContainer builds the dependency graph.
func NewContainer(cfg *ContainerConfig) *Container {
	authService := service.NewAuthService(
		cfg.UserRepo,
		cfg.TenantRepo,
		cfg.RefreshRepo,
		cfg.ServiceConfig,
	)

	return &Container{
		AuthService:   authService,
		AuthHandler:   handler.NewAuthHandler(authService, cfg.Cookies),
		TenantHandler: handler.NewTenantHandler(authService),
		HealthHandler: handler.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Version),
	}
}
