// Package main is the entry point for the Pictor admin CLI.
// This tool provides administrative commands for managing user accounts
// directly against the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/config"
	"github.com/prn-tf/pictor/internal/domain"
	"github.com/prn-tf/pictor/internal/pkg/password"
	"github.com/prn-tf/pictor/internal/repository"
	"github.com/prn-tf/pictor/internal/repository/postgres"
	"github.com/prn-tf/pictor/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Pictor Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
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

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return errors.New("user subcommand required: create, list, delete")
	}

	switch args[0] {
	case "create":
		return runUserCreate(args[1:])
	case "list":
		return runUserList(args[1:])
	case "delete":
		return runUserDelete(args[1:])
	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runUserCreate(args []string) error {
	fs := flag.NewFlagSet("user create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	name := fs.String("name", "", "display name")
	username := fs.String("username", "", "login username")
	pass := fs.String("password", "", "initial password")
	fs.Parse(args)

	if *name == "" || *username == "" || *pass == "" {
		return errors.New("--name, --username and --password are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	hash, err := hasher.Hash(*pass)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := domain.NewUser(*name, *username, hash)
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return fmt.Errorf("username %q is already taken", *username)
		}
		return err
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Username)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	limit := fs.Int("limit", 50, "maximum number of users to show")
	offset := fs.Int("offset", 0, "number of users to skip")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	result, err := repo.List(ctx, repository.ListOptions{Limit: *limit, Offset: *offset})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tCREATED")
	for _, u := range result.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	fmt.Printf("\n%d of %d users\n", len(result.Items), result.Total)
	return nil
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	id := fs.String("id", "", "user ID to delete")
	fs.Parse(args)

	if *id == "" {
		return errors.New("--id is required")
	}
	userID, err := strconv.ParseInt(*id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user ID %q", *id)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user %d not found", userID)
		}
		return err
	}

	fmt.Printf("Deleted user %d\n", userID)
	return nil
}

// openRepository opens a user repository against the configured database.
func openRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	logger := zerolog.Nop()

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
			return nil, nil, err
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

func printUsage() {
	fmt.Println(`Pictor Admin CLI

Usage:
  pictor-admin <command> [arguments]

Commands:
  user        Manage users (create, list, delete)
  version     Print version information
  help        Show this help message

Examples:
  pictor-admin user create --name "Ann Smith" --username ann --password secret123
  pictor-admin user list --limit 20
  pictor-admin user delete --id 42

Configuration is read the same way as pictor-server: from --config,
./config.yaml, or PICTOR_-prefixed environment variables.`)
}
