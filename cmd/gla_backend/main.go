package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	"github.com/finkit/gl_ledger_app/internal/core/services"
	"github.com/finkit/gl_ledger_app/internal/handlers"
	"github.com/finkit/gl_ledger_app/internal/middleware"
	"github.com/finkit/gl_ledger_app/internal/repositories/cache"
	"github.com/finkit/gl_ledger_app/internal/repositories/database/pgsql"
	"github.com/finkit/gl_ledger_app/pkg/config"
	"github.com/finkit/gl_ledger_app/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	idemStore, err := newIdempotencyStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize idempotency store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool, idemStore)

	var journalOpts []services.JournalServiceOption
	if cfg.AuditInTx {
		journalOpts = append(journalOpts, services.WithHardAudit())
	}
	serviceContainer := services.NewServiceContainer(repos, cfg.MaxHeaderTextLen, journalOpts...)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterValidations(); err != nil {
		logger.Error("Failed to register binding validations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newIdempotencyStore prefers Redis; without a REDIS_URL a process-local
// store is used, which is only safe for single-instance deployments.
func newIdempotencyStore(cfg *config.Config, logger *slog.Logger) (portsrepo.IdempotencyStore, error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; using in-memory idempotency store")
		return cache.NewMemoryIdempotencyStore(cfg.InFlightTTL, cfg.CompletedTTL), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis for idempotency records.")
	return cache.NewRedisIdempotencyStore(client, cfg.InFlightTTL, cfg.CompletedTTL), nil
}

// runMigrations applies all pending up migrations using a throwaway
// database/sql connection over the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil {
		return sourceErr
	} else if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
