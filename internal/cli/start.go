package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/daemon/notify"
	"github.com/meowbar/meowbar/internal/daemon/server"
	"github.com/meowbar/meowbar/internal/daemon/tray"
	"github.com/meowbar/meowbar/internal/models"
)

var (
	foregroundFlag bool
	framesDirFlag  string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Show the cat in the menu bar",
	Long: `Start watching the status file and show the cat in the menu bar.

With --foreground, no tray icon is created; state changes are printed to
the terminal instead (useful for development and headless machines).`,
	RunE: runStart,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, startCmd} {
		c.Flags().BoolVar(&foregroundFlag, "foreground", false, "run without a tray icon, printing state changes")
		c.Flags().StringVar(&framesDirFlag, "frames-dir", "", "directory with <prefix>-<n>.png animation frames")
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime()
	if err != nil {
		return err
	}
	if framesDirFlag != "" {
		if rc.framesDir, err = config.ResolveFramesDir(framesDirFlag); err != nil {
			return err
		}
	}

	if err := claimInstance(rc.statusFile, !foregroundFlag); err != nil {
		return err
	}
	defer releaseInstance()

	dispatcher := notify.NewDispatcher(notify.BeeepNotifier{}, rc.settings.NotificationsEnabled)

	if foregroundFlag {
		log.Println("Running in foreground mode (no system tray)")
		return runForeground(rc, dispatcher)
	}
	log.Println("Running with system tray")
	return runWithTray(rc, dispatcher)
}

// runForeground runs without a system tray, blocking on signals.
func runForeground(rc *runtimeConfig, dispatcher *notify.Dispatcher) error {
	srv, err := rc.newServer(dispatcher, server.ListenerFunc(func(ev engine.Event) {
		printEvent(rc.table, ev)
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Watching %s (PID %d)\n", rc.statusFile, os.Getpid())

	<-ctx.Done()
	log.Println("Shutting down...")
	srv.Stop()
	fmt.Println("Stopped")
	return nil
}

// runWithTray runs with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(rc *runtimeConfig, dispatcher *notify.Dispatcher) error {
	var srv *server.Server
	var startErr error

	onStart := func() {
		srv, startErr = rc.newServer(dispatcher, server.ListenerFunc(tray.HandleEvent))
		if startErr != nil {
			log.Printf("Failed to create server: %v", startErr)
			tray.Quit()
			return
		}
		if startErr = srv.Start(context.Background()); startErr != nil {
			log.Printf("Failed to start server: %v", startErr)
			tray.Quit()
			return
		}

		// Quit the tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		if srv != nil {
			srv.Stop()
		}
		fmt.Println("Stopped")
	}

	// The tray needs a DaemonState before the server exists, so it gets a
	// lazy wrapper that defers to the server once onStart has created it.
	lazyState := &lazyDaemonState{
		getSrv:     func() *server.Server { return srv },
		statusFile: rc.statusFile,
		dispatcher: dispatcher,
		settings:   rc.settings,
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(lazyState, tray.Options{
		FramesDir:     rc.framesDir,
		StateTable:    rc.table,
		ShowStats:     rc.settings.ShowStats,
		ShowEventsLog: rc.settings.ShowEventsLog,
		RecentEvents:  rc.settings.RecentEvents,
	}, onStart, onExit)
	return startErr
}

// lazyDaemonState implements tray.DaemonState before and after the server
// is created inside onStart.
type lazyDaemonState struct {
	getSrv     func() *server.Server
	statusFile string
	dispatcher *notify.Dispatcher
	settings   *models.Settings
}

func (l *lazyDaemonState) Snapshot() (models.CatState, *models.StatusDocument) {
	if srv := l.getSrv(); srv != nil {
		return srv.Snapshot()
	}
	return models.StateIdle, models.EmptyStatus()
}

func (l *lazyDaemonState) StatusFile() string {
	return l.statusFile
}

func (l *lazyDaemonState) NotificationsEnabled() bool {
	return l.dispatcher.Enabled()
}

// SetNotificationsEnabled applies the toggle and persists it.
func (l *lazyDaemonState) SetNotificationsEnabled(enabled bool) {
	l.dispatcher.SetEnabled(enabled)
	l.settings.NotificationsEnabled = enabled
	if err := config.SaveSettings(l.settings); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}
}

func (l *lazyDaemonState) RequestShutdown() {
	if srv := l.getSrv(); srv != nil {
		server.NewTrayState(srv).RequestShutdown()
		return
	}
	tray.Quit()
}

// printEvent writes one line per state change in foreground mode.
func printEvent(table models.StateTable, ev engine.Event) {
	if ev.Kind != engine.EventStateChanged {
		return
	}
	info := table.Info(ev.State)
	line := fmt.Sprintf("%s  %s %s",
		styleLabel.Render(time.Now().Format("15:04:05")),
		info.Emoji,
		styleForState(info).Render(info.DisplayName),
	)
	if ev.Cause != engine.CauseManual {
		line += styleHint.Render(fmt.Sprintf(" (%s)", ev.Cause))
	}
	if ev.State == models.StateError && ev.Document.Error() != "" {
		line += " " + styleError.Render(ev.Document.Error())
	}
	fmt.Println(line)
}
