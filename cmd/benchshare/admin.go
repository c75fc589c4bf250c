package main

import (
	"benchshare/internal/auth"
	"benchshare/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAdminCmd(a *app) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tasks",
	}

	var (
		displayName string
		password    string
		isAdmin     bool
	)
	createUser := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := auth.NewService(auth.NewRepository(db), session.NewRepository(db))
			user, err := svc.RegisterUser(cmd.Context(), args[0], displayName, password, isAdmin)
			if err != nil {
				return err
			}
			a.logger.Info("user created",
				zap.Int64("id", user.ID),
				zap.String("username", user.Username),
				zap.Bool("admin", user.Admin))
			return nil
		},
	}
	createUser.Flags().StringVar(&displayName, "display-name", "", "display name (defaults to the username)")
	createUser.Flags().StringVar(&password, "password", "", "account password")
	createUser.Flags().BoolVar(&isAdmin, "admin", false, "grant administrator rights")
	_ = createUser.MarkFlagRequired("password")

	admin.AddCommand(createUser)
	return admin
}
