package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/models"
)

func TestNewRequiresStatusFile(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() accepted an empty status file path")
	}
}

func TestServerPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meow-state.json")
	clock := clockwork.NewFakeClock()

	events := make(chan engine.Event, 16)
	srv, err := New(Config{
		StatusFile:   path,
		PollInterval: time.Second,
		Clock:        clock,
	}, ListenerFunc(func(ev engine.Event) { events <- ev }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Stop()

	next := func() engine.Event {
		t.Helper()
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
			return engine.Event{}
		}
	}

	// The created default file is reported as a refresh of idle.
	if ev := next(); ev.Kind != engine.EventDocumentRefreshed || ev.State != models.StateIdle {
		t.Fatalf("initial event = %s %s", ev.Kind, ev.State)
	}

	tmp := filepath.Join(dir, "meow-state.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"state":"complete","timestamp":""}`), 0644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(tmp, future, future); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)

	ev := next()
	if ev.Kind != engine.EventStateChanged || ev.State != models.StateComplete || ev.Cause != engine.CauseManual {
		t.Fatalf("event = %s %s (%s), want complete (manual)", ev.Kind, ev.State, ev.Cause)
	}

	clock.Advance(6 * time.Second)
	ev = next()
	if ev.State != models.StateIdle || ev.Cause != engine.CauseAuto {
		t.Fatalf("event = %s %s (%s), want idle (auto)", ev.Kind, ev.State, ev.Cause)
	}

	if state, _ := srv.Snapshot(); state != models.StateIdle {
		t.Errorf("Snapshot() state = %s, want idle", state)
	}
	if srv.StatusFile() != path {
		t.Errorf("StatusFile() = %s, want %s", srv.StatusFile(), path)
	}
}

func TestStopWithoutStart(t *testing.T) {
	srv, err := New(Config{StatusFile: filepath.Join(t.TempDir(), "meow-state.json")})
	if err != nil {
		t.Fatal(err)
	}
	srv.Stop()
	srv.Stop()
}
