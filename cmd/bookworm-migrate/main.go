// Package main is the entry point for the Bookworm database migration tool.
// It applies embedded schema migrations for the configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/config"
	"github.com/prn-tf/bookworm-api/internal/repository/postgres"
	"github.com/prn-tf/bookworm-api/internal/repository/sqlite"
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

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	switch command {
	case "version":
		fmt.Printf("Bookworm Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		run(*configPath, migrateUp)

	case "status":
		run(*configPath, migrateStatus)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// run loads configuration and executes the given action against the
// configured database.
func run(configPath string, action func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error) {
	cfg := config.MustLoad(configPath)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := action(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// migrateUp applies all pending migrations.
func migrateUp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil

	case "postgres":
		db, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// migrateStatus prints the current schema version.
func migrateStatus(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.Database.Driver != "postgres" {
		fmt.Printf("Driver: %s (status reporting only available for postgres)\n", cfg.Database.Driver)
		return nil
	}

	db, err := openPostgres(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Current schema version: %d\n", version)
	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*postgres.DB, error) {
	return postgres.NewDB(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
}

func printUsage() {
	fmt.Println(`Bookworm Migration Tool

Usage:
  bookworm-migrate [flags] <command>

Commands:
  up          Run all pending migrations
  status      Show current migration status
  version     Print version information
  help        Show this help message

Flags:
  -config     Path to config file (environment variables also apply,
              prefixed with BOOKWORM_)

Examples:
  bookworm-migrate up
  bookworm-migrate -config configs/config.yaml status`)
}
