// Package models contains shared data structures used across the application.
package models

import (
	"fmt"
	"time"
)

// CatState identifies what the agent is doing, as shown by the cat.
type CatState string

const (
	StateIdle       CatState = "idle"
	StateStarting   CatState = "starting"
	StateThinking   CatState = "thinking"
	StateWorking    CatState = "working"
	StateError      CatState = "error"
	StateComplete   CatState = "complete"
	StateEnding     CatState = "ending"
	StateCompacting CatState = "compacting"
)

// AllStates lists every known state in display order.
var AllStates = []CatState{
	StateIdle,
	StateStarting,
	StateThinking,
	StateWorking,
	StateError,
	StateComplete,
	StateEnding,
	StateCompacting,
}

// Valid reports whether s is a known state.
func (s CatState) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

func (s CatState) String() string {
	return string(s)
}

// StateInfo is the static metadata attached to a state.
type StateInfo struct {
	DisplayName       string
	Emoji             string
	Color             string // "gray" | "yellow" | "blue" | "green" | "red" | "gold" | "purple" | "teal"
	FramePrefix       string
	FrameCount        int
	AnimationInterval time.Duration

	// AutoTransitionAfter is zero when the state stays until the next update.
	AutoTransitionAfter  time.Duration
	AutoTransitionTarget CatState
}

// HasAutoTransition reports whether the state expires on its own.
func (i StateInfo) HasAutoTransition() bool {
	return i.AutoTransitionAfter > 0
}

// StateTable maps every state to its metadata.
type StateTable map[CatState]StateInfo

// DefaultStateTable returns the built-in state metadata.
func DefaultStateTable() StateTable {
	return StateTable{
		StateIdle: {
			DisplayName: "Sleeping", Emoji: "\U0001F4A4", Color: "gray",
			FramePrefix: "idle", FrameCount: 4, AnimationInterval: time.Second,
			AutoTransitionTarget: StateIdle,
		},
		StateStarting: {
			DisplayName: "Waking up", Emoji: "☀", Color: "yellow",
			FramePrefix: "wakeup", FrameCount: 3, AnimationInterval: 300 * time.Millisecond,
			AutoTransitionAfter: 2 * time.Second, AutoTransitionTarget: StateThinking,
		},
		StateThinking: {
			DisplayName: "Typing", Emoji: "⌨", Color: "blue",
			FramePrefix: "typing", FrameCount: 4, AnimationInterval: 400 * time.Millisecond,
			AutoTransitionTarget: StateIdle,
		},
		StateWorking: {
			DisplayName: "Running", Emoji: "\U0001F3C3", Color: "green",
			FramePrefix: "running", FrameCount: 6, AnimationInterval: 150 * time.Millisecond,
			AutoTransitionTarget: StateIdle,
		},
		StateError: {
			DisplayName: "Scared!", Emoji: "⚠", Color: "red",
			FramePrefix: "scared", FrameCount: 3, AnimationInterval: 200 * time.Millisecond,
			AutoTransitionAfter: 3 * time.Second, AutoTransitionTarget: StateWorking,
		},
		StateComplete: {
			DisplayName: "Waiting for praise", Emoji: "✨", Color: "gold",
			FramePrefix: "celebrate", FrameCount: 4, AnimationInterval: 300 * time.Millisecond,
			AutoTransitionAfter: 6 * time.Second, AutoTransitionTarget: StateIdle,
		},
		StateEnding: {
			DisplayName: "Bye bye", Emoji: "\U0001F44B", Color: "purple",
			FramePrefix: "wave", FrameCount: 4, AnimationInterval: 400 * time.Millisecond,
			AutoTransitionAfter: 3 * time.Second, AutoTransitionTarget: StateIdle,
		},
		StateCompacting: {
			DisplayName: "Thinking", Emoji: "\U0001F4AD", Color: "teal",
			FramePrefix: "thinking", FrameCount: 4, AnimationInterval: 500 * time.Millisecond,
			AutoTransitionTarget: StateIdle,
		},
	}
}

// Info returns the metadata for s, falling back to idle for unknown states.
func (t StateTable) Info(s CatState) StateInfo {
	if info, ok := t[s]; ok {
		return info
	}
	return t[StateIdle]
}

// WithOverrides returns a copy of t with the auto-transition rules replaced
// by the given overrides. The receiver is not modified.
func (t StateTable) WithOverrides(overrides map[CatState]AutoTransitionConfig) (StateTable, error) {
	out := make(StateTable, len(t))
	for s, info := range t {
		out[s] = info
	}
	for s, o := range overrides {
		info, ok := out[s]
		if !ok {
			return nil, fmt.Errorf("auto transition override for unknown state %q", s)
		}
		info.AutoTransitionAfter = o.After
		if o.Target != "" {
			info.AutoTransitionTarget = o.Target
		}
		out[s] = info
	}
	return out, nil
}

// Validate checks the table for missing states, bad timings and
// auto-transition rules that would loop forever.
func (t StateTable) Validate() error {
	for _, s := range AllStates {
		info, ok := t[s]
		if !ok {
			return fmt.Errorf("state %q missing from table", s)
		}
		if info.FrameCount <= 0 {
			return fmt.Errorf("state %q: frame count must be positive", s)
		}
		if info.AnimationInterval <= 0 {
			return fmt.Errorf("state %q: animation interval must be positive", s)
		}
		if info.AutoTransitionAfter < 0 {
			return fmt.Errorf("state %q: auto transition delay must not be negative", s)
		}
		if !info.HasAutoTransition() {
			continue
		}
		if !info.AutoTransitionTarget.Valid() {
			return fmt.Errorf("state %q: unknown auto transition target %q", s, info.AutoTransitionTarget)
		}
		if info.AutoTransitionTarget == s {
			return fmt.Errorf("state %q: auto transition targets itself", s)
		}
	}

	// Every chain of auto transitions must end in a state that stays put.
	for _, start := range AllStates {
		seen := map[CatState]bool{start: true}
		cur := start
		for t[cur].HasAutoTransition() {
			cur = t[cur].AutoTransitionTarget
			if seen[cur] {
				return fmt.Errorf("auto transitions starting at %q form a cycle", start)
			}
			seen[cur] = true
		}
	}
	return nil
}
