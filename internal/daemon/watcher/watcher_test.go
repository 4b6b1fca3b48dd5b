package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/models"
)

// writeAt replaces path with content whose mtime is at, the way hook
// writers do: write a temp file, then rename it into place.
func writeAt(t *testing.T, path, content string, at time.Time) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(tmp, at, at); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func receive(t *testing.T, ch <-chan *models.StatusDocument) *models.StatusDocument {
	t.Helper()
	select {
	case doc := <-ch:
		return doc
	case <-time.After(2 * time.Second):
		t.Fatal("no document received")
		return nil
	}
}

func expectNone(t *testing.T, ch <-chan *models.StatusDocument) {
	t.Helper()
	select {
	case doc, ok := <-ch:
		if ok {
			t.Fatalf("unexpected document with state %s", doc.State)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCheckDeduplicatesByModificationTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow-state.json")
	base := time.Now().Add(-time.Hour)
	writeAt(t, path, `{"state":"working","timestamp":""}`, base)

	w := New(path, WithClock(clockwork.NewFakeClock()))
	ctx := context.Background()

	w.check(ctx)
	if doc := receive(t, w.Updates()); doc.State != models.StateWorking {
		t.Fatalf("state = %s, want working", doc.State)
	}

	w.check(ctx)
	expectNone(t, w.Updates())

	writeAt(t, path, `{"state":"complete","timestamp":""}`, base.Add(time.Second))
	w.check(ctx)
	if doc := receive(t, w.Updates()); doc.State != models.StateComplete {
		t.Fatalf("state = %s, want complete", doc.State)
	}
}

func TestCheckDropsUndecodableContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow-state.json")
	base := time.Now().Add(-time.Hour)
	ctx := context.Background()
	w := New(path, WithClock(clockwork.NewFakeClock()))

	tests := []struct {
		content string
		valid   bool
	}{
		{`{"state":"work`, false},
		{`{"timestamp":"2026-01-02T03:04:05Z"}`, false},
		{`{"state":"dancing"}`, false},
		{`{"state":"thinking","timestamp":""}`, true},
	}
	for i, tt := range tests {
		writeAt(t, path, tt.content, base.Add(time.Duration(i)*time.Second))
		w.check(ctx)
		if tt.valid {
			if doc := receive(t, w.Updates()); doc.State != models.StateThinking {
				t.Errorf("state = %s, want thinking", doc.State)
			}
		} else {
			expectNone(t, w.Updates())
		}
	}
}

func TestCheckMissingFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent.json"), WithClock(clockwork.NewFakeClock()))
	w.check(context.Background())
	expectNone(t, w.Updates())
}

func TestStartCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude", "meow-state.json")
	w := New(path, WithClock(clockwork.NewFakeClock()))

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if doc := receive(t, w.Updates()); doc.State != models.StateIdle {
		t.Fatalf("initial state = %s, want idle", doc.State)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("status file not created: %v", err)
	}
	if string(data) != models.DefaultStatusFile {
		t.Errorf("content = %s, want default document", data)
	}
}

func TestStartEmitsExistingState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow-state.json")
	writeAt(t, path, `{"state":"working","timestamp":""}`, time.Now().Add(-time.Minute))

	w := New(path, WithClock(clockwork.NewFakeClock()))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if doc := receive(t, w.Updates()); doc.State != models.StateWorking {
		t.Fatalf("initial state = %s, want working", doc.State)
	}
}

func TestWatcherPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow-state.json")
	base := time.Now().Add(-time.Hour)
	writeAt(t, path, `{"state":"idle","timestamp":""}`, base)

	clock := clockwork.NewFakeClock()
	w := New(path, WithClock(clock), WithPollInterval(time.Second))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()
	receive(t, w.Updates())

	states := []models.CatState{models.StateStarting, models.StateWorking, models.StateComplete}
	for i, s := range states {
		writeAt(t, path, `{"state":"`+string(s)+`","timestamp":""}`, base.Add(time.Duration(i+1)*time.Second))
		// Poll in case file notifications are unavailable.
		clock.Advance(time.Second)

		if doc := receive(t, w.Updates()); doc.State != s {
			t.Fatalf("state = %s, want %s", doc.State, s)
		}
		clock.Advance(time.Second)
		expectNone(t, w.Updates())
	}
}

func TestStopClosesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow-state.json")
	w := New(path, WithClock(clockwork.NewFakeClock()))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	receive(t, w.Updates())

	w.Stop()
	w.Stop()

	select {
	case _, ok := <-w.Updates():
		if ok {
			t.Fatal("received a document after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel not closed after Stop")
	}
}
