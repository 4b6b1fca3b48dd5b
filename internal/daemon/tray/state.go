// Package tray implements the system tray icon and menu.
package tray

import "github.com/meowbar/meowbar/internal/models"

// DaemonState provides access to daemon state and preferences for the tray.
type DaemonState interface {
	Snapshot() (models.CatState, *models.StatusDocument)
	StatusFile() string
	NotificationsEnabled() bool
	SetNotificationsEnabled(enabled bool)
	RequestShutdown()
}

// Options controls what the tray shows.
type Options struct {
	FramesDir     string
	StateTable    models.StateTable
	ShowStats     bool
	ShowEventsLog bool
	RecentEvents  int
}
