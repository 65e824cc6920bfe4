package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nasermirzaei89/labbook"
	"github.com/nasermirzaei89/labbook/db/sqlite3"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				return sqlite3.MigrateUp(cmd.Context(), db)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				return sqlite3.MigrateDown(cmd.Context(), db)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				version, dirty, err := sqlite3.MigrationVersion(db)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)

				return err
			})
		},
	})

	return cmd
}

func withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := labbook.OpenDB(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err := db.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close database", "error", err)
		}
	}()

	return fn(db)
}
