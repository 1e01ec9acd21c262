package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/questup-api/internal/config"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/gemini"
	"github.com/phrazzld/questup-api/internal/platform/postgres"
	"github.com/phrazzld/questup-api/internal/service"
	"github.com/phrazzld/questup-api/internal/service/auth"
	"github.com/phrazzld/questup-api/internal/store"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	examStore store.ExamStore

	// sessionKeys holds the Gemini API keys learners select through the API.
	sessionKeys *credential.SessionKeyStore
	// staticKey is the server-wide key from configuration; it may be empty.
	staticKey credential.Provider

	jwtService  auth.JWTService
	generator   generation.Generator
	userService service.UserService
	examService service.ExamService
}

// newApplication wires stores, the generator and services. db may be nil in
// tests that only exercise routing.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		sessionKeys: credential.NewSessionKeyStore(),
		staticKey:   credential.NewStaticProvider(cfg.LLM.GeminiAPIKey),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.examStore = postgres.NewPostgresExamStore(db, logger)

	// The configured key wins; otherwise the key the learner selected.
	credentials := credential.NewChain(app.staticKey, credential.NewDialogProvider(app.sessionKeys))

	app.generator, err = gemini.NewGenerator(logger, cfg.LLM, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized",
		"model", cfg.LLM.ModelName,
		"max_retries", cfg.LLM.MaxRetries,
		"retry_base_delay_ms", cfg.LLM.RetryBaseDelayMS)

	app.userService = service.NewUserService(app.userStore, db, logger)

	app.examService, err = service.NewExamService(app.examStore, app.generator, logger,
		service.WithGenerationTimeout(app.requestTimeout()))
	if err != nil {
		return nil, fmt.Errorf("failed to create exam service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) requestTimeout() time.Duration {
	return time.Duration(app.config.Server.RequestTimeoutSeconds) * time.Second
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
