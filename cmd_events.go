package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"productos/internal/logging"
	"productos/internal/services"
	"productos/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

func newEventsCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Log product events published to RabbitMQ",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is required")
			}

			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				// Closing the channel ends Consume.
				if err := client.Close(); err != nil {
					slog.Error("error closing RabbitMQ client", "error", err)
				}
			}()

			slog.Info("waiting for product events", "queue", rabbitmq.ProductEventsQueue)
			return client.Consume(logProductEvent)
		},
	}
}

func logProductEvent(body []byte) error {
	var event services.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode product event: %w", err)
	}
	slog.Info("product event",
		"event", event.Event,
		"product_id", event.Product.ID,
		"name", event.Product.Name,
		"price", event.Product.Price,
		"availability", event.Product.Availability,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
