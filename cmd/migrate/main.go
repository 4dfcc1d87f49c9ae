package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"    // PostgreSQL driver
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"github.com/pressly/goose/v3"

	"github.com/delordemm1/psych-api/internal/logging"
	"github.com/delordemm1/psych-api/migrations"
)

const usage = "usage: migrate [up|up-by-one|down|redo|reset|status|version] [args...]"

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err := run(context.Background(), os.Args[1:], logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) < 1 {
		return fmt.Errorf("missing goose command, %s", usage)
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	command := args[0]
	logger.Info("running goose command", "command", command)
	if err := goose.RunContext(ctx, command, db, ".", args[1:]...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	logger.Info("goose command finished", "command", command)
	return nil
}
