package tui

import "github.com/meowbar/meowbar/internal/daemon/engine"

// EngineEventMsg carries an engine event into the program.
type EngineEventMsg struct {
	Event engine.Event
}

// tickMsg refreshes time-based fields such as the session duration.
type tickMsg struct{}
