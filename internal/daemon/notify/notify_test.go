package notify

import (
	"errors"
	"testing"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/models"
)

type recordingNotifier struct {
	bodies []string
	err    error
}

func (r *recordingNotifier) Notify(title, body string) error {
	if title != Title {
		return errors.New("unexpected title " + title)
	}
	r.bodies = append(r.bodies, body)
	return r.err
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		state    models.CatState
		errMsg   string
		expected string
	}{
		{"Complete", models.StateComplete, "", "Task complete! Cat is waiting for praise"},
		{"Error with message", models.StateError, "exit status 1", "Error: exit status 1"},
		{"Error without message", models.StateError, "", "Error: Something went wrong"},
		{"Working", models.StateWorking, "", ""},
		{"Idle", models.StateIdle, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.state, tt.errMsg); got != tt.expected {
				t.Errorf("Message(%s, %q) = %q, want %q", tt.state, tt.errMsg, got, tt.expected)
			}
		})
	}
}

func TestDispatcherHandleEvent(t *testing.T) {
	errMsg := "boom"
	errDoc := &models.StatusDocument{State: models.StateError, ErrorMessage: &errMsg}
	completeDoc := &models.StatusDocument{State: models.StateComplete}

	tests := []struct {
		name     string
		enabled  bool
		event    engine.Event
		expected []string
	}{
		{
			name:     "Manual complete",
			enabled:  true,
			event:    engine.Event{Kind: engine.EventStateChanged, State: models.StateComplete, Cause: engine.CauseManual, Document: completeDoc},
			expected: []string{"Task complete! Cat is waiting for praise"},
		},
		{
			name:     "Manual error",
			enabled:  true,
			event:    engine.Event{Kind: engine.EventStateChanged, State: models.StateError, Cause: engine.CauseManual, Document: errDoc},
			expected: []string{"Error: boom"},
		},
		{
			name:    "Disabled",
			enabled: false,
			event:   engine.Event{Kind: engine.EventStateChanged, State: models.StateComplete, Cause: engine.CauseManual, Document: completeDoc},
		},
		{
			name:    "Auto transition",
			enabled: true,
			event:   engine.Event{Kind: engine.EventStateChanged, State: models.StateComplete, Cause: engine.CauseAuto, Document: completeDoc},
		},
		{
			name:    "Document refresh",
			enabled: true,
			event:   engine.Event{Kind: engine.EventDocumentRefreshed, State: models.StateError, Document: errDoc},
		},
		{
			name:    "Uninteresting state",
			enabled: true,
			event:   engine.Event{Kind: engine.EventStateChanged, State: models.StateWorking, Cause: engine.CauseManual, Document: models.EmptyStatus()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			d := NewDispatcher(n, tt.enabled)
			d.HandleEvent(tt.event)
			if len(n.bodies) != len(tt.expected) {
				t.Fatalf("sent %v, want %v", n.bodies, tt.expected)
			}
			for i := range tt.expected {
				if n.bodies[i] != tt.expected[i] {
					t.Errorf("body = %q, want %q", n.bodies[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDispatcherToggle(t *testing.T) {
	n := &recordingNotifier{err: errors.New("no notification daemon")}
	d := NewDispatcher(n, false)
	ev := engine.Event{Kind: engine.EventStateChanged, State: models.StateComplete, Cause: engine.CauseManual, Document: models.EmptyStatus()}

	d.HandleEvent(ev)
	d.SetEnabled(true)
	if !d.Enabled() {
		t.Fatal("Enabled() = false after SetEnabled(true)")
	}
	// A failing notifier is logged, not fatal.
	d.HandleEvent(ev)
	if len(n.bodies) != 1 {
		t.Errorf("sent %d notifications, want 1", len(n.bodies))
	}
}
