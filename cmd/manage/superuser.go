package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gurkanbulca/todoapp/internal/service"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

func newCreateSuperuserCmd() *cobra.Command {
	var emailAddr, password string

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an active staff user with full permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if emailAddr == "" || password == "" {
				return errors.New("both --email and --password are required")
			}

			env, err := openEnvironment(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.db.Close()

			accounts := service.NewAccountService(
				env.db,
				auth.NewTokenManager(env.cfg.JWT.AccessSecret, env.cfg.JWT.RefreshSecret, env.cfg.JWT.AccessTokenDuration, env.cfg.JWT.RefreshTokenDuration),
				auth.NewPasswordManager(env.cfg.PasswordPolicy()),
				email.NewMockEmailService(),
				storage.NewLocal(env.cfg.Storage.MediaRoot),
				env.logger,
			)

			user, err := accounts.CreateSuperuser(cmd.Context(), emailAddr, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (id %d).\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailAddr, "email", "", "Email address of the new superuser")
	cmd.Flags().StringVar(&password, "password", "", "Password of the new superuser")
	return cmd
}
