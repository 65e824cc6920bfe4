package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/labbook"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "labbook",
		Short:         "Electronic lab notebook with commented experiments and database items",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			err := loadEnvFile(envFile)
			if err != nil {
				return err
			}

			slog.SetDefault(labbook.NewLogger())

			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file to load environment variables from, if it exists")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())

	return root
}

// loadEnvFile loads path without overriding variables already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}

	return nil
}
