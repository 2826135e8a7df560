package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/adapters/database/memory"
	"github.com/SscSPs/user_accounts_service/internal/adapters/database/pgsql"
	"github.com/SscSPs/user_accounts_service/internal/adapters/media/objectstore"
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
	"github.com/SscSPs/user_accounts_service/internal/core/services"
	"github.com/SscSPs/user_accounts_service/internal/handlers"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/SscSPs/user_accounts_service/internal/platform/metrics"
	"github.com/SscSPs/user_accounts_service/internal/validation"
	"github.com/SscSPs/user_accounts_service/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title User Accounts API
// @version 1.0
// @description Registration, login and rotating session tokens.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := setupStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize credential store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	m := metrics.New()
	deps := services.ContainerDeps{
		Validator: validation.New(),
		Events:    m,
	}
	if cfg.MediaStoreEnabled() {
		media, err := objectstore.NewMediaStore(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize media store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		deps.Media = media
	}
	container := services.NewServiceContainer(cfg, repos, deps)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// setupStore picks the credential store named by STORE_DRIVER. Postgres is migrated before use.
func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory credential store")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	applied, err := database.RunMigrations(cfg.DatabaseURL, "file://migrations")
	if err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	return pgsql.NewRepositoryProvider(dbPool),
		func() { database.ClosePgxPool(dbPool) }, nil
}
