package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/models"
)

var statusJSONFlag bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current agent state",
	Long: `Read the status file once and print the agent's state, session
counters and recent events.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "print the raw status document")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime()
	if err != nil {
		return err
	}

	doc, err := config.ReadStatus(rc.statusFile)
	if err != nil {
		return err
	}

	if statusJSONFlag {
		data, err := models.EncodeStatus(doc)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	info := rc.table.Info(doc.State)
	fmt.Printf("  %s %s\n", info.Emoji, styleForState(info).Render(info.DisplayName))
	printField("State", string(doc.State))
	printField("File", rc.statusFile)
	if doc.Timestamp != "" {
		printField("Updated", doc.Timestamp)
	}
	printOptional("Session", doc.SessionID)
	printOptional("Last event", doc.LastEvent)
	printOptional("Tool", doc.ToolName)
	if doc.State == models.StateError && doc.Error() != "" {
		fmt.Printf("    %s %s\n", styleLabel.Render(fmt.Sprintf("%-11s", "Error")), styleError.Render(doc.Error()))
	}
	printCount("Tool calls", doc.ToolCallCount)
	printCount("Prompts", doc.PromptCount)
	printCount("Errors", doc.ErrorCount)
	if elapsed, ok := doc.SessionDuration(time.Now()); ok {
		printField("Duration", elapsed.Round(time.Second).String())
	}

	events := doc.RecentEvents(rc.settings.RecentEvents)
	if len(events) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", styleBrand.Render("Recent events"))
		for _, e := range events {
			line := e.Event
			if e.Detail != "" {
				line += ": " + e.Detail
			}
			fmt.Printf("    %s %s\n", styleLabel.Render(e.Time), styleValue.Render(line))
		}
	}
	return nil
}

func printField(label, value string) {
	fmt.Printf("    %s %s\n", styleLabel.Render(fmt.Sprintf("%-11s", label)), styleValue.Render(value))
}

func printOptional(label string, value *string) {
	if value != nil && *value != "" {
		printField(label, *value)
	}
}

func printCount(label string, value *int) {
	if value != nil {
		printField(label, fmt.Sprintf("%d", *value))
	}
}
