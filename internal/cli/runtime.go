package cli

import (
	"fmt"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/daemon/server"
	"github.com/meowbar/meowbar/internal/models"
)

// runtimeConfig is the settings file merged with command-line overrides.
type runtimeConfig struct {
	settings   *models.Settings
	statusFile string
	framesDir  string
	table      models.StateTable
}

func loadRuntime() (*runtimeConfig, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	override := settings.StatusFile
	if statusFileFlag != "" {
		override = statusFileFlag
	}
	statusFile, err := config.ResolveStatusFile(override)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status file: %w", err)
	}

	framesDir, err := config.ResolveFramesDir(settings.FramesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve frames directory: %w", err)
	}

	table, err := settings.StateTable()
	if err != nil {
		return nil, fmt.Errorf("invalid auto_transitions in settings: %w", err)
	}

	return &runtimeConfig{
		settings:   settings,
		statusFile: statusFile,
		framesDir:  framesDir,
		table:      table,
	}, nil
}

func (rc *runtimeConfig) newServer(listeners ...server.Listener) (*server.Server, error) {
	return server.New(server.Config{
		StatusFile:   rc.statusFile,
		PollInterval: rc.settings.PollInterval,
		IdleTimeout:  rc.settings.IdleTimeout,
		StateTable:   rc.table,
		Verbose:      verboseFlag,
	}, listeners...)
}
