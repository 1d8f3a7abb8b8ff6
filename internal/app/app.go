package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/shortlinks/internal/config"
	"github.com/sundayezeilo/shortlinks/internal/db/migrations"
	db "github.com/sundayezeilo/shortlinks/internal/db/sqlc"
	"github.com/sundayezeilo/shortlinks/internal/identity"
	"github.com/sundayezeilo/shortlinks/internal/linkcache"
	"github.com/sundayezeilo/shortlinks/internal/server"
	"github.com/sundayezeilo/shortlinks/internal/shortener"
	"github.com/sundayezeilo/shortlinks/internal/telemetry"
)

// initTracing is replaced in tests.
var initTracing = telemetry.InitTracing

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool
	Redis   *redis.Client
	Server  *server.Server
	Handler *shortener.Handler

	shutdownTracing telemetry.ShutdownFunc
}

// New initializes and returns a new App instance with all dependencies wired up.
// Resources acquired before a failing step are released before it returns.
func New(ctx context.Context) (_ *App, err error) {
	var undo cleanups
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	shutdownTracing, err := initTracing(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	undo.add(func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	})

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, cfg.Database.MigrationURL(), logger); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	dbPool, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	undo.add(dbPool.Close)

	verifier, err := identity.NewHS256(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	svcCfg := &shortener.ServiceConfig{
		MaxCodeAttempts: cfg.Links.MaxCodeAttempts,
		Logger:          logger,
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		undo.add(func() { _ = rdb.Close() })

		cache := linkcache.New(rdb, cfg.Cache.TTL)
		checkCache(ctx, cache, cfg.Cache.Addr, logger)
		svcCfg.Cache = cache
	}

	// Setup application dependencies
	queries := db.New(dbPool)
	repo := shortener.NewRepository(queries)
	svc := shortener.NewService(repo, svcCfg)
	handler := shortener.NewHandler(shortener.HandlerConfig{
		Service: svc,
		Logger:  logger,
		BaseURL: cfg.Server.BaseURL,
	})

	srv := server.New(cfg, logger, handler, verifier)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"cache", cfg.Cache.Enabled(),
		"tracing", cfg.Observability.Enabled,
	)

	return &App{
		Config:          cfg,
		Logger:          logger,
		DBPool:          dbPool,
		Redis:           rdb,
		Server:          srv,
		Handler:         handler,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Migrate applies pending schema migrations using the environment
// configuration, without starting the server.
func Migrate(ctx context.Context) error {
	if err := loadEnv(); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)
	if err := migrations.Up(ctx, cfg.Database.MigrationURL(), logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err)
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			a.Logger.Warn("failed to flush traces", "error", err)
		}
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// connectDatabase establishes a connection to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// checkCache logs whether the redirect cache is reachable. An unreachable
// cache is tolerated: lookups fall back to PostgreSQL.
func checkCache(ctx context.Context, cache pinger, addr string, logger *slog.Logger) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := cache.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, continuing without warm cache",
			"addr", addr,
			"error", err,
		)
		return false
	}
	logger.Info("redis connection established", "addr", addr)
	return true
}

// cleanups releases startup resources in reverse order of acquisition.
type cleanups []func()

func (c *cleanups) add(f func()) { *c = append(*c, f) }

func (c *cleanups) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
	*c = nil
}
