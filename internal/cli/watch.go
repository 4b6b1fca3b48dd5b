package cli

import (
	"context"
	"io"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/meowbar/meowbar/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the cat in the terminal",
	Long: `Watch the status file and show the cat's state, the session counters
and recent events in the terminal. Press q to quit.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime()
	if err != nil {
		return err
	}

	// Log lines would tear through the alt screen.
	if verboseFlag {
		f, err := tea.LogToFile("meowbar-debug.log", "meowbar")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	srv, err := rc.newServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, srv, rc.table, rc.settings.RecentEvents)
}
