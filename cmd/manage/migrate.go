package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gurkanbulca/todoapp/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.db.Close()

			env.logger.Info("Running database migrations", "driver", env.cfg.Database.Driver)
			if err := database.Migrate(cmd.Context(), env.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully.")
			return nil
		},
	}
}
