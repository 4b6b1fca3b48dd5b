package cli

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/meowbar/meowbar/internal/config"
)

// startDaemon launches "meowbar start" in the background and waits until
// it has registered itself.
func startDaemon() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate meowbar binary: %w", err)
	}

	args := []string{"start"}
	if statusFileFlag != "" {
		args = append(args, "--status-file", statusFileFlag)
	}
	cmd := exec.Command(self, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = cmd.Process.Release()

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

// claimInstance registers this process in daemon.yaml, refusing to start
// when another instance is alive.
func claimInstance(statusFile string, tray bool) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running && info.PID != os.Getpid() {
		return fmt.Errorf("meowbar already running (PID %d) watching %s", info.PID, info.StatusFile)
	}
	return config.SaveDaemonInfo(newDaemonInfo(statusFile, tray))
}

// releaseInstance removes daemon.yaml on shutdown.
func releaseInstance() {
	if err := config.RemoveDaemonInfo(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to remove daemon info: %v\n", err)
	}
}
