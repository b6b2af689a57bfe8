package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/config"
	"finitefield.org/artist-dashboard/internal/dashboard/httpserver"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/session"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing storage failed", zap.Error(err))
		}
	}()

	hashKey, blockKey, generated, err := cfg.SessionKeys()
	if err != nil {
		return fmt.Errorf("session keys: %w", err)
	}
	if generated {
		logger.Warn("session.hash_key is not set: using a random key, browsers get new workspaces after restart")
	}
	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.Session.Secure,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.HTTP.Address,
		BasePath:         cfg.HTTP.BasePath,
		Environment:      cfg.HTTP.Environment,
		ReadTimeout:      cfg.HTTP.ReadTimeout,
		WriteTimeout:     cfg.HTTP.WriteTimeout,
		IdleTimeout:      cfg.HTTP.IdleTimeout,
		CSRFCookieName:   cfg.CSRF.CookieName,
		CSRFCookieSecure: cfg.Session.Secure,
		CSRFHeaderName:   cfg.CSRF.HeaderName,
		CSRFFieldName:    cfg.CSRF.FieldName,
		MaxAvatarBytes:   cfg.Uploads.MaxAvatarBytes,
		Logger:           logger,
		Sessions:         sessions,
		Workspaces:       newWorkspaceManager(cfg, backend),
	})
	if err != nil {
		return err
	}

	serverLogger := logger.Named("http").With(zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("artist dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
