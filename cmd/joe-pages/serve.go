package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/joestump/joe-pages/internal/auth"
	"github.com/joestump/joe-pages/internal/build"
	"github.com/joestump/joe-pages/internal/config"
	"github.com/joestump/joe-pages/internal/db"
	"github.com/joestump/joe-pages/internal/handler"
	"github.com/joestump/joe-pages/internal/llm"
	"github.com/joestump/joe-pages/internal/logging"
	"github.com/joestump/joe-pages/internal/preview"
	"github.com/joestump/joe-pages/internal/workspace"
)

const (
	reapInterval    = time.Minute
	shutdownTimeout = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var database *sqlx.DB
	if cfg.Session.Store != "memory" {
		var err error
		database, err = openSessionDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()
	}

	sessionManager, err := auth.NewSessionManager(cfg.Session.Store, database, cfg.Session.Lifetime, !cfg.InsecureCookies)
	if err != nil {
		return err
	}

	instruction, err := llm.NewInstruction(cfg.LLM.InstructionFile, logger)
	if err != nil {
		return err
	}
	if err := instruction.Watch(ctx); err != nil {
		return err
	}

	gen, err := llm.New(ctx, cfg, instruction, logger)
	if err != nil {
		return err
	}

	registry := workspace.NewRegistry(gen, preview.Options{
		QuietPeriod:     cfg.Preview.QuietPeriod,
		GenerateTimeout: cfg.LLM.Timeout,
		Logger:          logger,
	}, cfg.Session.Lifetime, logger)
	go registry.Run(ctx, reapInterval)

	var authHandlers *auth.Handlers
	if cfg.OIDCEnabled() {
		provider, err := auth.NewProvider(ctx, cfg)
		if err != nil {
			return err
		}
		authHandlers = auth.NewHandlers(provider, sessionManager, !cfg.InsecureCookies, logger)
	}

	router := handler.NewRouter(handler.Deps{
		SessionManager: sessionManager,
		AuthHandlers:   authHandlers,
		AuthMiddleware: auth.NewMiddleware(sessionManager, cfg.OIDCEnabled()),
		Registry:       registry,
		Logger:         logger,
	})

	// No write timeout: a generate request lasts as long as the model call.
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening",
		"addr", cfg.HTTP.Addr,
		"provider", cfg.LLM.Provider,
		"session_store", cfg.Session.Store,
		"login", cfg.OIDCEnabled(),
		"version", build.Version,
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openSessionDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	database, err := db.New(ctx, cfg.Session.Store, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.Session.Store); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}
