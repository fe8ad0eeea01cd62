package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "hoshikuzu",
	Short:         "Hoshikuzu is a Discord bot for temporary voice rooms, tickets and server housekeeping.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and run the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// Execute runs the command line; the bot runs when no subcommand is given
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
