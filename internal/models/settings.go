package models

import "time"

// AutoTransitionConfig overrides a state's auto-transition rule.
// After == 0 disables the rule.
type AutoTransitionConfig struct {
	After  time.Duration `yaml:"after"`
	Target CatState      `yaml:"target,omitempty"`
}

// Settings represents global application settings.
// This corresponds to ~/.meowbar/settings.yaml.
type Settings struct {
	Version              int                               `yaml:"version"`
	StatusFile           string                            `yaml:"status_file"` // empty = ~/.claude/meow-state.json
	FramesDir            string                            `yaml:"frames_dir"`  // empty = ~/.meow-bar/frames
	NotificationsEnabled bool                              `yaml:"notifications_enabled"`
	ShowStats            bool                              `yaml:"show_stats"`
	ShowEventsLog        bool                              `yaml:"show_events_log"`
	RecentEvents         int                               `yaml:"recent_events"`
	PollInterval         time.Duration                     `yaml:"poll_interval"`
	IdleTimeout          time.Duration                     `yaml:"idle_timeout"`
	AutoTransitions      map[CatState]AutoTransitionConfig `yaml:"auto_transitions,omitempty"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:              1,
		NotificationsEnabled: true,
		ShowStats:            true,
		ShowEventsLog:        true,
		RecentEvents:         5,
		PollInterval:         time.Second,
		IdleTimeout:          120 * time.Second,
	}
}

// ApplyDefaults fills zero values left by a partial settings file.
func (s *Settings) ApplyDefaults() {
	def := NewSettings()
	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.RecentEvents <= 0 {
		s.RecentEvents = def.RecentEvents
	}
	if s.PollInterval <= 0 {
		s.PollInterval = def.PollInterval
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = def.IdleTimeout
	}
}

// StateTable returns the default state table with this file's overrides applied.
func (s *Settings) StateTable() (StateTable, error) {
	table, err := DefaultStateTable().WithOverrides(s.AutoTransitions)
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
