package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pastforward-api/internal/album"
	"github.com/phrazzld/pastforward-api/internal/config"
	"github.com/phrazzld/pastforward-api/internal/engine"
	"github.com/phrazzld/pastforward-api/internal/platform/gemini"
	"github.com/phrazzld/pastforward-api/internal/platform/postgres"
	"github.com/phrazzld/pastforward-api/internal/session"
	"github.com/phrazzld/pastforward-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when no durable mirror is configured.
	db     *sql.DB
	mirror store.SessionStore

	state    *session.StateStore
	client   *gemini.Client
	engine   *engine.Engine
	exporter *album.Exporter
}

// newApplication creates an application instance with all dependencies
// initialized. The database mirror and the album exporter are optional and
// wired only when their configuration is present.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if cfg.Database.URL != "" {
		db, err := setupAppDatabase(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		app.db = db

		if err := runMigrations(db, logger); err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		app.mirror = postgres.NewPostgresSessionStore(db)
		logger.Info("Durable session mirror enabled")
	} else {
		logger.Info("No database configured, sessions are in-memory only")
	}

	state, err := session.NewStateStore(logger, app.mirror)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create state store: %w", err)
	}
	app.state = state

	client, err := gemini.NewClient(ctx, logger, cfg.Generation)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	app.client = client
	logger.Info("Gemini client initialized",
		"image_model", cfg.Generation.ImageModel,
		"video_model", cfg.Generation.VideoModel)

	app.engine, err = engine.NewEngine(
		logger,
		state,
		engine.Backends{
			Generator: client,
			Editor:    client,
			Animator:  client,
			Narrator:  client,
		},
		cfg.Engine,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if cfg.Album.CompositorURL != "" {
		assembler, err := album.NewHTTPAssembler(logger, cfg.Album.CompositorURL)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create album assembler: %w", err)
		}
		app.exporter, err = album.NewExporter(logger, state, assembler)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create album exporter: %w", err)
		}
		logger.Info("Album export enabled", "compositor_url", cfg.Album.CompositorURL)
	} else {
		logger.Info("Album export disabled, no compositor configured")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. It waits for
// in-flight generation work before closing the database so the mirror sees
// every final item state.
func (app *application) cleanup() {
	if app.engine != nil {
		app.engine.Wait()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
