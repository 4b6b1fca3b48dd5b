// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global meowbar directory.
	GlobalDirName = ".meowbar"

	// StatusDirName is the directory the agent hooks write into.
	StatusDirName = ".claude"

	// FramesDirName holds installed animation frames (~/.meow-bar/frames).
	FramesDirName = ".meow-bar/frames"
)

// File names
const (
	DaemonFileName   = "daemon.yaml"
	SettingsFileName = "settings.yaml"
	StatusFileName   = "meow-state.json"
)

// GlobalDir returns the path to the global meowbar directory (~/.meowbar/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DaemonFileName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// DefaultStatusFile returns the well-known status file path (~/.claude/meow-state.json).
func DefaultStatusFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, StatusDirName, StatusFileName), nil
}

// DefaultFramesDir returns the installed frames directory (~/.meow-bar/frames).
func DefaultFramesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FramesDirName), nil
}

// ResolveStatusFile returns override when set, otherwise the default path.
func ResolveStatusFile(override string) (string, error) {
	if override != "" {
		return expandHome(override)
	}
	return DefaultStatusFile()
}

// ResolveFramesDir returns override when set, otherwise the default path.
func ResolveFramesDir(override string) (string, error) {
	if override != "" {
		return expandHome(override)
	}
	return DefaultFramesDir()
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

// EnsureGlobalDir creates the global meowbar directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
