// ABOUTME: CLI commands that change a user's workout state.
// ABOUTME: Skip a rotation day or cancel a workout left active.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
)

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the next rotation day",
	Long: `Record a skipped session for the user's next muscle group and advance
the rotation (Chest, Back, Shoulders, Legs).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		skipped, next, err := db.SkipDay(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to skip day: %w", err)
		}
		color.Green("✓ Skipped %s", skipped)
		fmt.Fprintf(cmd.OutOrStdout(), "Next group: %s\n", next)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the user's active workout",
	Long: `Mark the user's active workout as cancelled. Exercises already saved
are kept. A conversation still open in a running bot is not affected until
the user's next action.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		s, err := db.GetActiveSession(cmd.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			color.Yellow("No active workout.")
			return nil
		}
		if err != nil {
			return err
		}
		if err := db.CloseSession(cmd.Context(), s.ID, models.StatusCancelled); err != nil {
			return fmt.Errorf("failed to cancel workout: %w", err)
		}
		color.Green("✓ Cancelled %s workout #%d", s.MuscleGroup, s.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(cancelCmd)
}
