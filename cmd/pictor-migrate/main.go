// Package main is the entry point for the Pictor database migration tool.
// This tool manages schema migrations for both PostgreSQL and SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/config"
	"github.com/prn-tf/pictor/internal/repository/postgres"
	"github.com/prn-tf/pictor/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator abstracts the driver-specific migration entry points.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Pictor Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := runUp(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := runStatus(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUp(args []string) error {
	ctx := context.Background()
	m, err := openMigrator(ctx, args)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, err := m.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Migrations applied, schema at version %d\n", version)
	return nil
}

func runStatus(args []string) error {
	ctx := context.Background()
	m, err := openMigrator(ctx, args)
	if err != nil {
		return err
	}
	defer m.Close()

	version, err := m.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d\n", version)
	return nil
}

func openMigrator(ctx context.Context, args []string) (migrator, error) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	switch cfg.Database.Driver {
	case "sqlite":
		return sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
	case "postgres":
		return postgres.NewDB(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Pictor Migration Tool

Usage:
  pictor-migrate <command> [arguments]

Commands:
  up          Run all pending migrations
  status      Show current schema version
  version     Print version information
  help        Show this help message

Examples:
  pictor-migrate up --config ./configs/config.yaml
  pictor-migrate status

Configuration is read the same way as pictor-server: from --config,
./config.yaml, or PICTOR_-prefixed environment variables.`)
}
