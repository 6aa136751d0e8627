package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskify/taskify-api/internal/api"
	"github.com/taskify/taskify-api/internal/platform/database"
	"golang.org/x/sync/errgroup"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	requestTimeout         = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background job workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.Default()

			a, err := newApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.cleanup()

			if migrate {
				m, err := database.NewMigrator(a.db, cfg.Database.Driver, logger)
				if err != nil {
					return err
				}
				if err := m.Up(cmd.Context()); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

// serve runs the HTTP server and the job runner until ctx is done, then
// shuts both down.
func (a *application) serve(ctx context.Context) error {
	router := api.NewRouter(api.RouterConfig{
		Services:       a.services,
		Tokens:         a.tokens,
		DB:             a.db,
		Logger:         a.logger,
		RequestTimeout: requestTimeout,
	})
	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(a.config.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	shutdownTimeout := defaultShutdownTimeout
	if s := a.config.Server.ShutdownTimeoutSeconds; s > 0 {
		shutdownTimeout = time.Duration(s) * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.runner.Run(gctx)
	})
	g.Go(func() error {
		a.logger.Info("starting server", slog.Int("port", a.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("server stopped")
	return err
}
