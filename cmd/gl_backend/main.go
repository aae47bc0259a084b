package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/SscSPs/general_ledger/internal/handlers"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/SscSPs/general_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/SscSPs/general_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title General Ledger API
// @version 1.0
// @description Double-entry general ledger: chart of accounts, journal entries, posting and reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	sink := events.NewPosthogSink(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer sink.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to reach redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Rate limit counters stored in redis")
	}
	submitLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		logger.Error("Failed to configure rate limiting", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := services.NewServiceContainer(repos, sink)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.ActorHeader},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteDeps{
		SubmitLimiter: submitLimiter,
		Events:        sink,
	})
	if err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupRepositories builds the configured storage backend and returns its cleanup function.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	if err := runMigrations(cfg, logger); err != nil {
		return repositories.RepositoryProvider{}, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return repositories.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// runMigrations applies every pending "up" migration through a short-lived database/sql connection.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
