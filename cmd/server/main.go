// Package main implements the QuestUp API server: learners sign in, select
// a Gemini API key, and generate, answer and retry exams built from their
// own reference documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/questup-api/internal/config"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	skipMigrations := flag.Bool("skip-migrations", false,
		"start without applying pending migrations")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd, *skipMigrations); err != nil {
		log.Fatalf("questup-api: %v", err)
	}
}

func run(ctx context.Context, migrateCmd string, skipMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	lg, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	lg.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("model", cfg.LLM.ModelName),
		slog.Bool("gemini_key_configured", cfg.LLM.GeminiAPIKey != ""))

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	lg.Info("database connection established")

	if migrateCmd != "" {
		defer closeDB(db, lg)
		return postgres.Migrate(ctx, db, migrateCmd, lg)
	}
	if !skipMigrations {
		if err := postgres.Migrate(ctx, db, "up", lg); err != nil {
			closeDB(db, lg)
			return err
		}
	}

	app, err := newApplication(cfg, lg, db)
	if err != nil {
		closeDB(db, lg)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func closeDB(db interface{ Close() error }, lg *slog.Logger) {
	if err := db.Close(); err != nil {
		lg.Error("error closing database connection", "error", err)
	}
}
