package main

import (
	"log/slog"
	"os"

	"github.com/Dosada05/lobby-royale/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lobby-royale",
		Short: "Multi-team lobby elimination tournaments",
		Long: `lobby-royale generates battle-royale style lobby brackets, collects score
reports from teams, raises disputes on disagreement and advances teams round
by round until a single winner remains.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newPlanCmd())
	return root
}

// loadRuntime читает конфигурацию и настраивает JSON логгер по LOG_LEVEL.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
