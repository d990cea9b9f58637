package main

import (
	"context"
	"log/slog"
	"os"

	"productos/internal/database"
	"productos/internal/logging"

	"github.com/spf13/cobra"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Check the database connection and sync the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
			defer cancel()
			if err := database.Connect(ctx, db); err != nil {
				return err
			}
			slog.Info("schema is up to date")
			return nil
		},
	}
}
