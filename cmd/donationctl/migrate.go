package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animal-donations/internal/donationportal/data/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := connectionString(cmd)
			if err != nil {
				return err
			}
			if err := database.RunMigrations(dsn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := connectionString(cmd)
			if err != nil {
				return err
			}
			if err := database.RollbackMigrations(dsn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema rolled back")
			return nil
		},
	})

	return cmd
}
