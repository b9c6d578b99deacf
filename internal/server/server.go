// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github-navigator/internal/api"
	"github-navigator/internal/config"
	"github-navigator/internal/github"
	"github-navigator/internal/history"
	"github-navigator/internal/navigator"
)

// Server wires the navigator components behind an HTTP listener.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
	dbpool  *pgxpool.Pool
}

// New builds every component from cfg. When DB_URL is set it migrates the
// database and records searches there.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	var store history.Store = history.NopStore{}
	if cfg.HistoryEnabled() {
		if err := history.Migrate(cfg.DBURL); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations applied successfully")

		dbpool, err := pgxpool.New(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.dbpool = dbpool
		store = history.NewPostgresStore(dbpool)
		logger.Info("Search history enabled")
	}

	ghClient, err := github.NewClient(cfg.GithubToken, cfg.GithubBaseURL, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	nav := navigator.New(ghClient, store, logger, NavigatorOptions(cfg))
	s.handler = api.NewRouter(nav, store, logger)
	return s, nil
}

// NavigatorOptions maps the configuration onto navigator.Options.
func NavigatorOptions(cfg *config.Config) navigator.Options {
	return navigator.Options{
		MaxResults:    cfg.MaxResults,
		Concurrency:   cfg.EnrichConcurrency,
		EnrichTimeout: cfg.EnrichTimeout,
		SearchTimeout: cfg.SearchTimeout,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases the database pool, if any.
func (s *Server) Close() {
	if s.dbpool != nil {
		s.dbpool.Close()
	}
}
