package main

import (
	"fmt"

	"github.com/nasermirzaei89/labbook"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := labbook.NewApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create app: %w", err)
			}

			err = app.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to run app: %w", err)
			}

			return nil
		},
	}
}
