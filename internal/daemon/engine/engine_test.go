package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/models"
)

type harness struct {
	t       *testing.T
	clock   *clockwork.FakeClock
	engine  *Engine
	updates chan *models.StatusDocument
	cancel  context.CancelFunc
	done    chan error
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	e, err := New(append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		t:       t,
		clock:   clock,
		engine:  e,
		updates: make(chan *models.StatusDocument),
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() { h.done <- e.Run(ctx, h.updates) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		h.t.Errorf("Run did not return after cancel")
	}
}

func (h *harness) send(s models.CatState) {
	h.t.Helper()
	select {
	case h.updates <- &models.StatusDocument{State: s, Timestamp: "2026-01-02T03:04:05Z"}:
	case <-time.After(2 * time.Second):
		h.t.Fatalf("engine did not accept %s", s)
	}
}

func (h *harness) next() Event {
	h.t.Helper()
	select {
	case ev := <-h.engine.Events():
		return ev
	case <-time.After(2 * time.Second):
		h.t.Fatalf("no event received")
		return Event{}
	}
}

func (h *harness) expectChange(state models.CatState, cause Cause) {
	h.t.Helper()
	ev := h.next()
	if ev.Kind != EventStateChanged || ev.State != state || ev.Cause != cause {
		h.t.Fatalf("event = %s %s (%s), want state_changed %s (%s)", ev.Kind, ev.State, ev.Cause, state, cause)
	}
}

func (h *harness) expectNone() {
	h.t.Helper()
	select {
	case ev := <-h.engine.Events():
		h.t.Fatalf("unexpected event %s %s (%s)", ev.Kind, ev.State, ev.Cause)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManualTransition(t *testing.T) {
	h := newHarness(t)

	h.send(models.StateWorking)
	ev := h.next()
	if ev.Kind != EventStateChanged || ev.State != models.StateWorking || ev.Previous != models.StateIdle || ev.Cause != CauseManual {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Document == nil || ev.Document.State != models.StateWorking {
		t.Errorf("event document = %+v", ev.Document)
	}
	h.expectNone()

	if state, doc := h.engine.Snapshot(); state != models.StateWorking || doc.State != models.StateWorking {
		t.Errorf("Snapshot() = %s, %s", state, doc.State)
	}
}

func TestSameStateRefreshesDocument(t *testing.T) {
	h := newHarness(t)

	h.send(models.StateIdle)
	if ev := h.next(); ev.Kind != EventDocumentRefreshed || ev.State != models.StateIdle {
		t.Fatalf("event = %s %s, want document_refreshed idle", ev.Kind, ev.State)
	}

	h.send(models.StateWorking)
	h.expectChange(models.StateWorking, CauseManual)
	h.send(models.StateWorking)
	if ev := h.next(); ev.Kind != EventDocumentRefreshed {
		t.Fatalf("event kind = %s, want document_refreshed", ev.Kind)
	}
}

func TestAutoTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   models.CatState
		after  time.Duration
		target models.CatState
	}{
		{"Complete returns to idle", models.StateComplete, 6 * time.Second, models.StateIdle},
		{"Starting settles into thinking", models.StateStarting, 2 * time.Second, models.StateThinking},
		{"Error recovers to working", models.StateError, 3 * time.Second, models.StateWorking},
		{"Ending returns to idle", models.StateEnding, 3 * time.Second, models.StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.send(tt.from)
			h.expectChange(tt.from, CauseManual)

			h.clock.Advance(tt.after - time.Millisecond)
			h.expectNone()

			h.clock.Advance(time.Millisecond)
			h.expectChange(tt.target, CauseAuto)
			h.expectNone()
		})
	}
}

func TestManualUpdateCancelsAutoTransition(t *testing.T) {
	h := newHarness(t)

	h.send(models.StateComplete)
	h.expectChange(models.StateComplete, CauseManual)

	h.clock.Advance(3 * time.Second)
	h.send(models.StateWorking)
	h.expectChange(models.StateWorking, CauseManual)

	h.clock.Advance(3 * time.Second)
	h.expectNone()
}

func TestIdleTimeout(t *testing.T) {
	h := newHarness(t)

	h.send(models.StateWorking)
	h.expectChange(models.StateWorking, CauseManual)

	h.clock.Advance(DefaultIdleTimeout - time.Second)
	h.expectNone()

	h.clock.Advance(time.Second)
	ev := h.next()
	if ev.State != models.StateIdle || ev.Cause != CauseIdleTimeout || ev.Previous != models.StateWorking {
		t.Fatalf("event = %s %s (%s), want idle from working (idle_timeout)", ev.Kind, ev.State, ev.Cause)
	}

	h.clock.Advance(2 * DefaultIdleTimeout)
	h.expectNone()
}

func TestManualUpdateRearmsIdleTimeout(t *testing.T) {
	h := newHarness(t, WithIdleTimeout(10*time.Second))

	h.send(models.StateWorking)
	h.expectChange(models.StateWorking, CauseManual)
	h.clock.Advance(8 * time.Second)

	h.send(models.StateThinking)
	h.expectChange(models.StateThinking, CauseManual)
	h.clock.Advance(8 * time.Second)
	h.expectNone()

	h.clock.Advance(2 * time.Second)
	h.expectChange(models.StateIdle, CauseIdleTimeout)
}

func TestIdleTimeoutAfterAutoChain(t *testing.T) {
	h := newHarness(t, WithIdleTimeout(10*time.Second))

	h.send(models.StateStarting)
	h.expectChange(models.StateStarting, CauseManual)
	h.clock.Advance(2 * time.Second)
	h.expectChange(models.StateThinking, CauseAuto)

	// The idle timer counts from the last manual transition.
	h.clock.Advance(8 * time.Second)
	h.expectChange(models.StateIdle, CauseIdleTimeout)
}

func TestRunClosesEventsWhenUpdatesClose(t *testing.T) {
	e, err := New(WithClock(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatal(err)
	}
	updates := make(chan *models.StatusDocument)
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background(), updates) }()

	close(updates)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after updates closed")
	}
	if _, ok := <-e.Events(); ok {
		t.Errorf("events channel still open")
	}

	if err := e.Run(context.Background(), updates); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestNewRejectsInvalidTable(t *testing.T) {
	table := models.DefaultStateTable()
	info := table[models.StateWorking]
	info.AutoTransitionAfter = time.Second
	info.AutoTransitionTarget = models.StateWorking
	table[models.StateWorking] = info

	if _, err := New(WithStateTable(table)); err == nil {
		t.Errorf("New() accepted a self-targeting auto transition")
	}
}
