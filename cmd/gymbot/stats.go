// ABOUTME: CLI commands for training statistics.
// ABOUTME: Summaries, personal records and last workouts rendered like the bot does.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/report"
)

var (
	statsFrom string
	statsTo   string
	statsLang string
)

var statsCmd = &cobra.Command{
	Use:   "stats <today|week|month|period>",
	Short: "Show a training summary",
	Long: `Show a training summary for a UTC window.

PERIODS:

  today    The current UTC day
  week     Monday to Sunday of the current UTC week
  month    The current UTC calendar month
  period   --from and --to, both inclusive (YYYY-MM-DD)

EXAMPLES:

  gymbot stats week --user 42
  gymbot stats period --user 42 --from 2024-05-01 --to 2024-05-31
  gymbot stats today --user 42 --lang de`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"today", "week", "month", "period"},
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		kind := report.Kind(args[0])
		w, err := statsWindow(kind, time.Now())
		if err != nil {
			return err
		}

		reporter, lang, err := newReporter(cmd.Context(), userID)
		if err != nil {
			return err
		}
		out, err := reporter.Summary(cmd.Context(), userID, lang, kind, w)
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var prCmd = &cobra.Command{
	Use:     "pr",
	Aliases: []string{"records"},
	Short:   "Show personal records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd, (*report.Reporter).PersonalRecords)
	},
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last three completed workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd, (*report.Reporter).LastWorkouts)
	},
}

func statsWindow(kind report.Kind, now time.Time) (report.Window, error) {
	switch kind {
	case report.KindToday:
		return report.Today(now), nil
	case report.KindWeek:
		return report.Week(now), nil
	case report.KindMonth:
		return report.Month(now), nil
	case report.KindPeriod:
		if statsFrom == "" || statsTo == "" {
			return report.Window{}, fmt.Errorf("period needs --from and --to (YYYY-MM-DD)")
		}
		return report.ParsePeriod(statsFrom, statsTo)
	}
	return report.Window{}, fmt.Errorf("unknown period: %s (use today, week, month, or period)", kind)
}

// newReporter builds a reporter and resolves the output language: --lang
// when given, else the user's stored preference.
func newReporter(ctx context.Context, userID int64) (*report.Reporter, models.Language, error) {
	text, err := i18n.Load()
	if err != nil {
		return nil, "", err
	}
	if statsLang != "" {
		if !models.IsSupportedLanguage(statsLang) {
			return nil, "", fmt.Errorf("unsupported language: %s", statsLang)
		}
		return report.New(db, text), models.Language(statsLang), nil
	}
	lang, err := db.Language(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return report.New(db, text), lang, nil
}

type reportFunc func(r *report.Reporter, ctx context.Context, userID int64, lang models.Language) (string, error)

func printReport(cmd *cobra.Command, fn reportFunc) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	reporter, lang, err := newReporter(cmd.Context(), userID)
	if err != nil {
		return err
	}
	out, err := fn(reporter, cmd.Context(), userID, lang)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "first day of the period (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "last day of the period, inclusive (YYYY-MM-DD)")
	for _, c := range []*cobra.Command{statsCmd, prCmd, lastCmd} {
		c.Flags().StringVar(&statsLang, "lang", "", "output language (en, ru, de, id)")
		rootCmd.AddCommand(c)
	}
}
