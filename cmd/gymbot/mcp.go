// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the gymbot database.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/gymbot/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server is read-only and communicates via stdin/stdout. Logs go to
stderr. --user sets the user that resources and tools without a user_id
argument read.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "gymbot": {
        "command": "gymbot",
        "args": ["mcp", "--user", "42"]
      }
    }
  }

AVAILABLE TOOLS:

  get_summary            Summary for today, week, month or a date range
  list_personal_records  Heaviest weight per exercise
  list_last_workouts     Recent completed workouts
  exercise_history       Logged exercises with paging
  next_muscle_group      Rotation position and recent groups

AVAILABLE RESOURCES:

  gymbot://records   Personal records
  gymbot://week      This week's summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []mcp.Option
		if userFlag != 0 {
			opts = append(opts, mcp.WithDefaultUser(userFlag))
		}
		server, err := mcp.NewServer(db, opts...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
