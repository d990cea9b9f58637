// Command productos serves the products REST API.
//
//	@title			REST API Products
//	@version		1.0.0
//	@description	API Docs for Products
//	@BasePath		/api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"productos/internal/config"
	"productos/internal/database"
	"productos/internal/repositories"
	"productos/internal/services"
	"productos/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "productos",
		Short:        "Products REST API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(newServeCmd(&envFile), newMigrateCmd(&envFile), newEventsCmd(&envFile))
	return root
}

const connectTimeout = 10 * time.Second

// newRepository opens the configured store. Connectivity problems are logged
// and tolerated so the server still starts; the first query reports them.
func newRepository(ctx context.Context, cfg config.Config, memory bool) (repositories.ProductRepository, func(), error) {
	if memory {
		slog.Info("using in-memory product store")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	_ = database.Connect(connectCtx, db)

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repositories.NewGORMProductRepository(db), closeDB, nil
}

// newPublisher returns nil when events are disabled or the broker is down.
func newPublisher(cfg config.Config) (services.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		slog.Info("RABBITMQ_URL not set, product events disabled")
		return nil, func() {}
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		slog.Warn("product events disabled", "error", err)
		return nil, func() {}
	}
	return client, func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing RabbitMQ client", "error", err)
		}
	}
}

func loadConfig(envFile string) (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
