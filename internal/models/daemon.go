package models

import "time"

// DaemonInfo describes the running meowbar instance.
// This corresponds to ~/.meowbar/daemon.yaml.
type DaemonInfo struct {
	Version    int       `yaml:"version"`
	PID        int       `yaml:"pid"`
	StatusFile string    `yaml:"status_file"`
	Tray       bool      `yaml:"tray"`
	StartedAt  time.Time `yaml:"started_at"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(pid int, statusFile string, tray bool) *DaemonInfo {
	return &DaemonInfo{
		Version:    1,
		PID:        pid,
		StatusFile: statusFile,
		Tray:       tray,
		StartedAt:  time.Now().UTC(),
	}
}
