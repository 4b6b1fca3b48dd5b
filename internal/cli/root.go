// Package cli implements the meowbar CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	statusFileFlag string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "meowbar",
	Short: "A menu-bar cat that shows what your coding agent is doing",
	Long: `MeowBar watches the status file written by your agent's hooks
(~/.claude/meow-state.json by default) and animates a cat in the menu bar:
sleeping, typing, running, celebrating or scared.

Run without a subcommand to start the menu-bar cat.`,
	SilenceUsage: true,
	RunE:         runStart,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&statusFileFlag, "status-file", "", "status file to watch (default ~/.claude/meow-state.json)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log ignored status file content")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}
