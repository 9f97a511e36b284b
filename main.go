package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumind/auth-service/internal/di"
	"github.com/edumind/auth-service/internal/handler"
	"github.com/edumind/auth-service/internal/middleware"
	"github.com/edumind/auth-service/internal/repository"
	"github.com/edumind/auth-service/internal/service"
	"github.com/edumind/auth-service/pkg/config"
	"github.com/edumind/auth-service/pkg/database"
	"github.com/edumind/auth-service/pkg/logger"
	"github.com/edumind/auth-service/pkg/redis"
	"github.com/edumind/auth-service/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Auth Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// User and tenant storage
	var (
		db         *database.PostgresDB
		userRepo   repository.UserRepository
		tenantRepo repository.TenantRepository
	)
	switch cfg.Store.Backend {
	case "postgres":
		dbCfg := &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnectTimeout:  5 * time.Second,
			MaxRetries:      3,
			RetryInterval:   1 * time.Second,
			EnableTracing:   cfg.OTel.Enabled,
		}
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))
		userRepo = repository.NewPostgresUserRepository(db.Pool())
		tenantRepo = repository.NewPostgresTenantRepository(db.Pool())
	default:
		users := repository.NewMemoryUserRepository()
		tenants := repository.NewMemoryTenantRepository()
		if err := repository.Seed(ctx, users, tenants); err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding in-memory store failed: %v", err))
		}
		appLog.Info("Using in-memory store with seed data")
		userRepo = users
		tenantRepo = tenants
	}

	// Refresh token storage
	var (
		redisClient *redis.Client
		refreshRepo repository.RefreshTokenRepository
	)
	switch cfg.Store.RefreshBackend {
	case "redis":
		redisCfg := &redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
		}
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
		refreshRepo = repository.NewRedisRefreshTokenRepository(redisClient)
	default:
		refreshRepo = repository.NewMemoryRefreshTokenRepository()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:          db,
		Redis:       redisClient,
		UserRepo:    userRepo,
		TenantRepo:  tenantRepo,
		RefreshRepo: refreshRepo,
		ServiceConfig: &service.AuthServiceConfig{
			AccessTokenSecret:  cfg.Auth.AccessTokenSecret,
			RefreshTokenSecret: cfg.Auth.RefreshTokenSecret,
			AccessTokenTTL:     cfg.Auth.AccessTokenTTL,
			RefreshTokenTTL:    cfg.Auth.RefreshTokenTTL,
			Issuer:             cfg.Auth.Issuer,
		},
		Cookies: handler.CookieConfig{
			Domain:        cfg.Auth.CookieDomain,
			Secure:        cfg.IsProduction(),
			AccessMaxAge:  int(cfg.Auth.AccessTokenTTL.Seconds()),
			RefreshMaxAge: int(cfg.Auth.RefreshTokenTTL.Seconds()),
		},
		Version: cfg.App.Version,
	})

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			// Public endpoints
			auth.POST("/login", container.AuthHandler.Login)
			auth.POST("/refresh", container.AuthHandler.Refresh)
			auth.POST("/logout", container.AuthHandler.Logout)

			// Internal endpoint for token validation (used by other services)
			auth.POST("/validate", container.AuthHandler.ValidateToken)

			// Protected endpoints (require authentication)
			protected := auth.Group("")
			protected.Use(middleware.Auth(container.AuthService))
			{
				protected.GET("/me", container.AuthHandler.Me)
				protected.POST("/logout-all", container.AuthHandler.LogoutAll)
			}
		}

		// Tenant routes (read-only; admin only for the full list)
		tenants := v1.Group("/tenants")
		tenants.Use(middleware.Auth(container.AuthService))
		{
			tenants.GET("/:id", container.TenantHandler.GetByID)

			admin := tenants.Group("")
			admin.Use(middleware.RequireRole(container.AuthService, "admin", "superuser"))
			{
				admin.GET("", container.TenantHandler.List)
			}
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Auth Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
