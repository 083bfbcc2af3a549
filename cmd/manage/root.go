package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gurkanbulca/todoapp/internal/config"
	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todoapp-manage",
		Short: "Administrative tasks for the todo app",
		Long: `Administrative tasks for the todo app.

Settings are read from the same environment variables (and optional .env
file) as the server.`,
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newCreateSuperuserCmd())
	return root
}

// environment is what every subcommand needs: configuration, a logger and an open database.
type environment struct {
	cfg    *config.Config
	logger *log.Logger
	db     *database.DB
}

func openEnvironment(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logg, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logg, db: db}, nil
}
