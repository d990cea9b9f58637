package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"productos/internal/app"
	"productos/internal/logging"
	"productos/internal/services"

	"github.com/spf13/cobra"
)

func newServeCmd(envFile *string) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			slog.Info("configuration loaded", "config", cfg.String())

			productRepo, closeDB, err := newRepository(cmd.Context(), cfg, memory)
			if err != nil {
				return err
			}
			defer closeDB()

			publisher, closeMQ := newPublisher(cfg)
			defer closeMQ()

			productService := services.NewProductService(productRepo, publisher)
			fiberApp := app.NewApp(productService, app.Options{FrontendURL: cfg.FrontendURL})

			// Graceful shutdown handling
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			listenErr := make(chan error, 1)
			go func() {
				slog.Info("starting server", "addr", cfg.Addr())
				listenErr <- fiberApp.Listen(cfg.Addr())
			}()

			select {
			case err := <-listenErr:
				return err
			case <-quit:
			}

			slog.Info("shutting down server")
			if err := fiberApp.Shutdown(); err != nil {
				slog.Error("error during Fiber shutdown", "error", err)
			}
			slog.Info("server gracefully stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep products in memory instead of DATABASE_URL")
	return cmd
}
