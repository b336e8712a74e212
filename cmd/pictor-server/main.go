// Package main is the entry point for the Pictor API server.
// Pictor is a user-account and image-upload service with JWT authentication.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/pictor/internal/auth"
	cachemem "github.com/prn-tf/pictor/internal/cache/memory"
	"github.com/prn-tf/pictor/internal/config"
	"github.com/prn-tf/pictor/internal/handler"
	"github.com/prn-tf/pictor/internal/metrics"
	"github.com/prn-tf/pictor/internal/pkg/password"
	"github.com/prn-tf/pictor/internal/ratelimit"
	"github.com/prn-tf/pictor/internal/repository"
	"github.com/prn-tf/pictor/internal/repository/postgres"
	"github.com/prn-tf/pictor/internal/repository/sqlite"
	"github.com/prn-tf/pictor/internal/service"
	"github.com/prn-tf/pictor/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const userCacheTTL = 5 * time.Minute

func main() {
	var (
		configPath  = flag.String("config", "", "path to configuration file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pictor-server %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Pictor API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	userRepo, dbClose, err := setupRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer dbClose()

	// Read-through cache in front of the user repository
	userCache := cachemem.NewCache()
	defer userCache.Stop()
	cachedRepo := repository.NewCachedUserRepository(userRepo, userCache, userCacheTTL, logger)

	// Login rate limiter
	limiter, limiterClose := setupLimiter(cfg, logger)
	defer limiterClose()

	// Image storage backend
	backend, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage backend")
	}

	// Services
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := service.NewAuthService(cachedRepo, hasher, issuer, limiter, service.LoginLimit{
		MaxAttempts: loginAttempts(cfg.RateLimit),
		Window:      cfg.RateLimit.Window,
	}, logger)
	accountService := service.NewAccountService(cachedRepo, hasher, logger)
	imageService := service.NewImageService(backend, cfg.Storage.MaxImageSize, logger)

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = startMetricsServer(ctx, cfg.Metrics, logger)
	}

	// HTTP server
	router := handler.NewRouter(handler.RouterConfig{
		UserHandler:    handler.NewUserHandler(authService, accountService, m, logger),
		ImageHandler:   handler.NewImageHandler(imageService, cfg.Server.MaxBodySize, m, logger),
		AuthMiddleware: auth.Middleware(issuer, logger),
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		Metrics:        m,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("API started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("HTTP server failure")
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}

// setupLogger builds the process logger from configuration.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat
	if zerolog.TimeFieldFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// setupRepository opens the configured database, runs migrations where the
// deployment is embedded, and returns the user repository plus a closer.
func setupRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite migration failed: %w", err)
		}
		return sqlite.NewUserRepository(db), func() { db.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// setupLimiter picks the login rate limiter backend. Redis keeps counters
// shared across nodes; the in-memory limiter serves single-node deployments.
func setupLimiter(cfg *config.Config, logger zerolog.Logger) (ratelimit.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		return ratelimit.NewNoopLimiter(), func() {}
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("Using Redis login rate limiter")
		return ratelimit.NewRedisLimiter(client), func() { client.Close() }
	}

	logger.Info().Msg("Using in-memory login rate limiter")
	return ratelimit.NewMemoryLimiter(), func() {}
}

// setupStorage builds the configured image storage backend.
func setupStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Backend(ctx, cfg.Storage.S3, logger)
	case "filesystem":
		return storage.NewFilesystemBackend(cfg.Storage.DataDir, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// loginAttempts returns the configured attempt limit, or zero when
// limiting is disabled so the service skips the check entirely.
func loginAttempts(cfg config.RateLimitConfig) int {
	if !cfg.Enabled {
		return 0
	}
	return cfg.MaxAttempts
}

// startMetricsServer serves Prometheus metrics on a dedicated port so the
// scrape endpoint never mixes with API traffic.
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, logger zerolog.Logger) *metrics.Metrics {
	m, registry := metrics.New()

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler(registry))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Str("path", cfg.Path).Msg("Metrics server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failure")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	return m
}
