// Package main provides the okrmaster API binary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/okrmaster-api/internal/config"
	"github.com/arnold/okrmaster-api/internal/database"
	"github.com/arnold/okrmaster-api/internal/logging"
	"github.com/arnold/okrmaster-api/internal/routes"
	"github.com/arnold/okrmaster-api/internal/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "okrmaster",
		Short:         "OKR tracking API with role based visibility",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(setup(logLevel))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup(logLevel)
			if err := database.Connect(cfg); err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("migrations applied")
			return nil
		},
	})

	return cmd
}

func setup(logLevel string) *config.Config {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg
}

func serve(cfg *config.Config) error {
	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// push is optional
	if err := services.InitPush(cfg.FCMServiceAccount); err != nil {
		slog.Warn("push notifications disabled", "error", err)
	}
	services.InitAI(cfg)

	app := routes.NewApp(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
