// ABOUTME: CLI commands for exporting gymbot data.
// ABOUTME: CSV workout history (optionally uploaded to S3) and JSON/YAML dumps.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymbot/internal/backup"
)

var (
	exportOutput  string
	historyOutput string
	historyUpload bool
)

var errBackupDisabled = errors.New("--upload needs backup.s3_bucket (or GYMBOT_BACKUP_S3_BUCKET)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export workout history as CSV",
	Long: `Export every logged exercise of a user as CSV, oldest first.

The columns match the file the bot sends for /history. With --upload the
CSV is also stored in the configured S3 bucket.

EXAMPLES:

  gymbot history --user 42                   # Print CSV to stdout
  gymbot history --user 42 -o history.csv    # Save to file
  gymbot history --user 42 --upload          # Save to S3 as well`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		if historyUpload && !cfg.Backup.Enabled() {
			return errBackupDisabled
		}

		var buf bytes.Buffer
		rows, err := db.WriteHistoryCSV(cmd.Context(), &buf, userID)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if err := writeOutput(cmd, historyOutput, buf.Bytes()); err != nil {
			return err
		}
		if historyOutput != "" {
			color.Green("✓ Exported %d exercises to %s", rows, historyOutput)
		}

		if historyUpload {
			uploader, err := backup.New(cmd.Context(), backupConfig(cfg))
			if err != nil {
				return err
			}
			key, err := uploader.UploadHistory(cmd.Context(), userID, buf.Bytes())
			if err != nil {
				return err
			}
			color.Green("✓ Uploaded to s3://%s/%s", uploader.Bucket(), key)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export a user's data",
	Long: `Export a user's profile, sessions and exercises.

FORMATS:

  json   Full JSON export (suitable for backup)
  yaml   YAML export (human-readable)

EXAMPLES:

  gymbot export json --user 42                 # Export as JSON
  gymbot export yaml --user 42 -o backup.yaml  # Save to file`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		var data []byte
		switch args[0] {
		case "json":
			data, err = db.ExportJSON(cmd.Context(), userID)
		case "yaml":
			data, err = db.ExportYAML(cmd.Context(), userID)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if err := writeOutput(cmd, exportOutput, data); err != nil {
			return err
		}
		if exportOutput != "" {
			color.Green("✓ Exported to %s", exportOutput)
		}
		return nil
	},
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "output file (default: stdout)")
	historyCmd.Flags().BoolVar(&historyUpload, "upload", false, "also upload the CSV to the backup bucket")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
}
