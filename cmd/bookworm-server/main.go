// Package main is the entry point for the Bookworm API server.
// Bookworm is a book review sharing backend with JWT authentication
// and pluggable storage for cover images.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/bookworm-api/internal/auth"
	"github.com/prn-tf/bookworm-api/internal/blob"
	"github.com/prn-tf/bookworm-api/internal/cache/memory"
	rediscache "github.com/prn-tf/bookworm-api/internal/cache/redis"
	"github.com/prn-tf/bookworm-api/internal/config"
	"github.com/prn-tf/bookworm-api/internal/handler"
	"github.com/prn-tf/bookworm-api/internal/metrics"
	"github.com/prn-tf/bookworm-api/internal/repository"
	"github.com/prn-tf/bookworm-api/internal/repository/postgres"
	"github.com/prn-tf/bookworm-api/internal/repository/sqlite"
	"github.com/prn-tf/bookworm-api/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Bookworm API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	userRepo, bookRepo, dbHealth, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer dbHealth.Close()

	// Cache
	cache := openCache(ctx, cfg.Redis, logger)

	// Blob storage
	blobs, err := openBlobStore(ctx, cfg.Blob, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open blob storage")
	}

	// Services
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens, logger)
	bookService := service.NewBookService(bookRepo, blobs, cache, logger)

	// HTTP layer
	routerCfg := handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authService, logger),
		BookHandler:    handler.NewBookHandler(bookService, logger),
		AuthMiddleware: auth.Middleware(tokens, userRepo, logger),
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		m := metrics.New()
		routerCfg.MetricsMiddleware = m.Middleware
		routerCfg.MetricsHandler = m.Handler()
	}
	if cfg.Blob.Backend == "filesystem" {
		routerCfg.MediaDir = cfg.Blob.DataDir
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      http.MaxBytesHandler(handler.NewRouter(routerCfg), cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("HTTP server failed")
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newLogger builds the root logger from logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

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

// openDatabase connects to the configured backend and applies pending
// migrations. A migration failure is fatal to the caller.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (
	repository.UserRepository, repository.BookRepository, repository.DatabaseHealth, error,
) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Path,
			JournalMode:     cfg.JournalMode,
			BusyTimeout:     cfg.BusyTimeout,
			SynchronousMode: cfg.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		return sqlite.NewUserRepository(db), sqlite.NewBookRepository(db), db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{
			Host:            cfg.Host,
			Port:            cfg.Port,
			User:            cfg.User,
			Password:        cfg.Password,
			Database:        cfg.Database,
			SSLMode:         cfg.SSLMode,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return postgres.NewUserRepository(db), postgres.NewBookRepository(db), db, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openCache returns the Redis cache when enabled, falling back to the
// in-process cache when Redis is disabled or unreachable.
func openCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) repository.Cache {
	if !cfg.Enabled {
		return memory.NewCache()
	}

	cache, err := rediscache.NewCache(ctx, rediscache.Config{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-process cache")
		return memory.NewCache()
	}
	return cache
}

// openBlobStore builds the configured blob backend.
func openBlobStore(ctx context.Context, cfg config.BlobConfig, logger zerolog.Logger) (blob.Store, error) {
	switch cfg.Backend {
	case "filesystem":
		return blob.NewFilesystemStore(cfg.DataDir, cfg.BaseURL, logger)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			KeyPrefix:       cfg.S3.KeyPrefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			UsePathStyle:    cfg.S3.UsePathStyle,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.Backend)
	}
}
