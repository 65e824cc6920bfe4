package main

import (
	"fmt"

	"github.com/nasermirzaei89/labbook"
	"github.com/nasermirzaei89/labbook/authentication"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUserAddCmd())

	return cmd
}

func newUserAddCmd() *cobra.Command {
	var req authentication.RegisterRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := labbook.NewApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create app: %w", err)
			}

			defer app.Close(cmd.Context())

			user, err := app.RegisterUser(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %d created: %s\n", user.ID, user.Email)

			return err
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address, used to log in")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")

	for _, name := range []string{"email", "first-name", "last-name", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
