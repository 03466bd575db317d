// ABOUTME: CLI command for applying database schema migrations.
// ABOUTME: Reports the schema version before and after.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long: `Apply pending schema migrations to the gymbot database.

Migrations also run automatically whenever the database is opened, so this
command mostly serves to check the schema version after an upgrade.

USAGE:

  gymbot migrate            # Apply pending migrations
  gymbot migrate --status   # Only print the current version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if migrateStatus {
			version, dirty, err := db.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema version: %d\n", version)
			if dirty {
				color.Red("Schema is dirty; a migration failed part way.")
			}
			return nil
		}

		summary, err := db.Migrate()
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if summary.Applied() {
			color.Green("✓ Migrated schema from version %d to %d", summary.FromVersion, summary.ToVersion)
		} else {
			fmt.Fprintf(out, "Schema is up to date (version %d)\n", summary.ToVersion)
		}
		fmt.Fprintf(out, "Database: %s\n", db.Path())
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the schema version without migrating")
	rootCmd.AddCommand(migrateCmd)
}
