package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/lobby-royale/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}

			dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := db.Migrate(ctx, dbConn); err != nil {
				return err
			}

			logger.Info("schema applied", slog.String("command", "migrate"))
			return nil
		},
	}
}
