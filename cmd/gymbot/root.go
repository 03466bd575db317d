// ABOUTME: Root Cobra command for the gymbot CLI.
// ABOUTME: Loads config, sets up logging and manages the store via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymbot/internal/config"
	"github.com/harperreed/gymbot/internal/logging"
	"github.com/harperreed/gymbot/internal/storage"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	userFlag   int64

	cfg       *config.Config
	db        *storage.DB
	logCloser io.Closer
)

var errNoUser = errors.New("--user is required")

// noStore marks commands that must not open the database.
const noStore = "no-store"

var rootCmd = &cobra.Command{
	Use:   "gymbot",
	Short: "Telegram workout logging bot",
	Long: `GymBot is a Telegram bot that walks you through logging a workout:
warm-up, body weight, exercises set by set, and a summary at the end.

THE BOT:

  $ gymbot serve                     # Poll Telegram and send daily reminders

  Configure the token in ~/.config/gymbot/config.yaml (telegram.token) or
  with GYMBOT_TELEGRAM_TOKEN.

STATISTICS:

  $ gymbot stats week --user 42      # This week's summary
  $ gymbot stats period --user 42 --from 2024-05-01 --to 2024-05-31
  $ gymbot pr --user 42              # Personal records
  $ gymbot last --user 42            # Last three workouts

DATA:

  $ gymbot history --user 42 -o history.csv   # CSV of every exercise
  $ gymbot export json --user 42              # Full JSON export
  $ gymbot migrate                            # Apply schema migrations

MCP INTEGRATION:

  Run 'gymbot mcp --user 42' to expose read-only statistics to MCP clients.

DATA STORAGE:

  The SQLite database lives at ~/.local/share/gymbot/gymbot.db unless
  storage.db_path or GYMBOT_STORAGE_DB_PATH says otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Annotations[noStore] == "true" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logCloser = logging.Setup(logging.Params{
			FileName:   config.ExpandPath(cfg.Logging.File),
			ToConsole:  cfg.Logging.Console,
			Level:      cfg.Logging.Level,
			FormatJSON: cfg.Logging.JSON,
		})

		db, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the gymbot version",
	Annotations: map[string]string{noStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gymbot %s\n", Version)
	},
}

// closeStore releases what PersistentPreRunE opened. It runs as a cobra
// finalizer so failed commands close the database too.
func closeStore() {
	if db != nil {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
		db = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// requireUser returns the --user flag value or errNoUser.
func requireUser() (int64, error) {
	if userFlag == 0 {
		return 0, errNoUser
	}
	return userFlag, nil
}

func init() {
	cobra.OnFinalize(closeStore)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/gymbot/config.yaml)")
	rootCmd.PersistentFlags().Int64VarP(&userFlag, "user", "u", 0, "Telegram user id")
	rootCmd.AddCommand(versionCmd)
}
