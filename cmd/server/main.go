package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/application/usecase"
	"github.com/hotellisting/hotellisting-api/infrastructure/adapter/memory"
	"github.com/hotellisting/hotellisting-api/infrastructure/adapter/postgres"
	"github.com/hotellisting/hotellisting-api/infrastructure/adapter/redis"
	"github.com/hotellisting/hotellisting-api/infrastructure/config"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/handler"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/middleware"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/validator"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/jwt"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/logger"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/metrics"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/password"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "hotellisting-api",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":               cfg.Environment,
		"identity_store":    cfg.IdentityStore,
		"named_token_store": cfg.NamedTokenStore,
	})

	var db *sql.DB
	if cfg.UsesPostgres() {
		db = openDatabase(ctx, cfg, structuredLogger)
		defer db.Close()
	}

	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	var identity outbound.IdentityStore
	switch cfg.IdentityStore {
	case config.StorePostgres:
		identity = postgres.NewIdentityStoreAdapter(db, passwordService)
	default:
		identity = memory.NewIdentityStore(passwordService)
	}

	var tokens outbound.NamedTokenRepository
	switch cfg.NamedTokenStore {
	case config.StorePostgres:
		tokens = postgres.NewNamedTokenRepositoryAdapter(db)
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to connect to redis", err, nil)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		tokens = redis.NewNamedTokenRepositoryAdapter(client)
	default:
		tokens = memory.NewNamedTokenStore()
	}

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize JWT service", err, nil)
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	refreshTokens := usecase.NewRefreshTokenStore(tokens, tokenService, cfg.RefreshTokenSalt, cfg.RefreshTokenTTL)
	authUseCase := usecase.NewAuthUseCase(identity, tokenService, refreshTokens, collector, structuredLogger)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	accountHandler := handler.NewAccountHandler(authUseCase, validator.New(), structuredLogger)
	router := handler.NewRouter(accountHandler, authMiddleware, registry)

	var h http.Handler = middleware.CorrelationIDMiddleware(router)
	if len(cfg.CORSAllowedOrigins) > 0 {
		h = middleware.CORSMiddleware(h, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"addr": cfg.Addr(),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Addr(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}

// openDatabase connects, pings and, when enabled, migrates. Any failure is
// fatal.
func openDatabase(ctx context.Context, cfg *config.Config, structuredLogger logger.Logger) *sql.DB {
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open database", err, nil)
		log.Fatalf("Failed to open database: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			structuredLogger.Error(ctx, "Failed to run migrations", err, nil)
			log.Fatalf("Failed to run migrations: %v", err)
		}
		structuredLogger.Info(ctx, "Migrations applied", nil)
	}
	return db
}
