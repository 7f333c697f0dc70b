package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/catalog/internal/config"
	"github.com/aanand-mishra/catalog/internal/flash"
	"github.com/aanand-mishra/catalog/internal/http/router"
	"github.com/aanand-mishra/catalog/internal/storage/sqlstore"
	"github.com/aanand-mishra/catalog/internal/view"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the configuration YAML file (default $CONFIG_PATH)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	log := setupLogger(cfg.Env, logOut)
	log.Info("starting catalog",
		slog.String("env", cfg.Env),
		slog.String("version", version))

	store, err := sqlstore.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}
	defer store.Close()
	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	views, err := view.New(os.DirFS(cfg.TemplateDir))
	if err != nil {
		return fmt.Errorf("initialise templates: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(store.DB(), cfg.Storage.Driver),
	)

	handler := router.New(router.Deps{
		Persons:   store.Persons(),
		Genres:    store.Genres(),
		Views:     views,
		Notifier:  flash.Notifier{CookieName: cfg.Flash.CookieName, Secure: cfg.Flash.Secure},
		Log:       log,
		StaticDir: cfg.StaticDir,
		Registry:  reg,
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr(),
		Handler:      handler,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and reports
	// back through errCh; main waits for either a failure or a signal.
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case err := <-errCh:
		return fmt.Errorf("server encountered an error: %w", err)
	case s := <-done:
		log.Info("shutdown signal received, stopping server", slog.String("signal", s.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, out io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
