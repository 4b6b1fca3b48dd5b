package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/models"
)

var (
	emitEventFlag   string
	emitDetailFlag  string
	emitToolFlag    string
	emitErrorFlag   string
	emitSessionFlag string
)

var emitCmd = &cobra.Command{
	Use:   "emit <state>",
	Short: "Write a state to the status file (for agent hooks)",
	Long: `Record a state change in the status file, the way an agent hook would.

The file is rewritten atomically. A new session (fresh id, counters reset)
starts on "starting" unless --session names the current one.

States: idle, starting, thinking, working, error, complete, ending, compacting

Examples:
  meowbar emit working --event PreToolUse --tool Bash
  meowbar emit error --event PostToolUse --error "exit status 1"
  meowbar emit complete --event Stop`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().StringVar(&emitEventFlag, "event", "", "hook event name (appended to the events log)")
	emitCmd.Flags().StringVar(&emitDetailFlag, "detail", "", "detail text for the events log entry")
	emitCmd.Flags().StringVar(&emitToolFlag, "tool", "", "tool name")
	emitCmd.Flags().StringVar(&emitErrorFlag, "error", "", "error message")
	emitCmd.Flags().StringVar(&emitSessionFlag, "session", "", "session id")
}

func runEmit(cmd *cobra.Command, args []string) error {
	state := models.CatState(strings.ToLower(strings.TrimSpace(args[0])))
	if !state.Valid() {
		return fmt.Errorf("unknown state %q", args[0])
	}

	rc, err := loadRuntime()
	if err != nil {
		return err
	}

	doc, err := config.RecordStatus(rc.statusFile, config.StatusUpdate{
		State:     state,
		Event:     emitEventFlag,
		Detail:    emitDetailFlag,
		ToolName:  emitToolFlag,
		Error:     emitErrorFlag,
		SessionID: emitSessionFlag,
	})
	if err != nil {
		return err
	}

	if verboseFlag {
		fmt.Printf("%s %s\n", styleSuccess.Render("✓"), styleValue.Render(string(doc.State)))
	}
	return nil
}
