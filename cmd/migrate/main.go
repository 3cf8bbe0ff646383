package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/crumbhouse/bakery-api/internal/config"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const usage = "usage: migrate [up|up-by-one|down|redo|reset|status|version|create <name>]"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	command, arguments := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// SQL migrations are written for PostgreSQL; sqlite databases use database.autoMigrate
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, got %q (set database.autoMigrate=true for sqlite)", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		if err := goose.Up(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to run up migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")

	case "up-by-one":
		if err := goose.UpByOne(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to apply next migration: %w", err)
		}

	case "down":
		if err := goose.Down(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		fmt.Println("Migration rolled back successfully")

	case "redo":
		if err := goose.Redo(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to redo migration: %w", err)
		}

	case "reset":
		if cfg.App.IsProductionLike() {
			return fmt.Errorf("reset is disabled in %s", cfg.App.Environment)
		}
		if err := goose.Reset(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to reset migrations: %w", err)
		}

	case "status":
		if err := goose.Status(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

	case "version":
		if err := goose.Version(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}

	case "create":
		if len(arguments) == 0 {
			return fmt.Errorf("create requires a migration name")
		}
		if err := goose.Create(db, migrationsDir, arguments[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		fmt.Printf("Migration created: %s\n", arguments[0])

	default:
		return fmt.Errorf("unknown command: %s\n%s", command, usage)
	}

	return nil
}
