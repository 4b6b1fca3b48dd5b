// Package engine drives the displayed cat state from status documents,
// timed auto-transitions and the idle fallback.
//
// All state lives on the goroutine running Run: document updates and timer
// firings arrive as channel receives on one select loop, so they are applied
// strictly one at a time in arrival order.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/models"
)

// DefaultIdleTimeout is how long a non-idle state may go without a manual
// transition before the engine falls back to idle.
const DefaultIdleTimeout = 120 * time.Second

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("engine already running")

// EventKind distinguishes identity changes from document refreshes.
type EventKind int

const (
	// EventStateChanged reports a new displayed state.
	EventStateChanged EventKind = iota
	// EventDocumentRefreshed reports a new document with the same state.
	EventDocumentRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventDocumentRefreshed:
		return "document_refreshed"
	default:
		return "unknown"
	}
}

// Cause records what triggered a state change.
type Cause int

const (
	CauseManual      Cause = iota // the status document changed state
	CauseAuto                     // the previous state expired
	CauseIdleTimeout              // no manual transition for the idle timeout
)

func (c Cause) String() string {
	switch c {
	case CauseManual:
		return "manual"
	case CauseAuto:
		return "auto"
	case CauseIdleTimeout:
		return "idle_timeout"
	default:
		return "unknown"
	}
}

// Event is delivered to the presentation layer.
type Event struct {
	Kind     EventKind
	State    models.CatState // displayed state after the event
	Previous models.CatState // displayed state before the event
	Cause    Cause           // only meaningful for EventStateChanged
	Document *models.StatusDocument
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for auto and idle timers.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithStateTable replaces the default state metadata.
func WithStateTable(t models.StateTable) Option {
	return func(e *Engine) { e.table = t }
}

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.idleTimeout = d
		}
	}
}

// Engine is the transition state machine.
type Engine struct {
	clock       clockwork.Clock
	table       models.StateTable
	idleTimeout time.Duration
	events      chan Event
	running     atomic.Bool

	// displayed and doc are written only by Run; mu lets Snapshot read them.
	mu        sync.RWMutex
	displayed models.CatState
	doc       *models.StatusDocument

	auto timerHandle
	idle timerHandle
}

// New creates an engine showing idle with the empty document.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		clock:       clockwork.NewRealClock(),
		table:       models.DefaultStateTable(),
		idleTimeout: DefaultIdleTimeout,
		events:      make(chan Event, 64),
		displayed:   models.StateIdle,
		doc:         models.EmptyStatus(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.table.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Events returns the ordered event stream. It is closed when Run returns.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Snapshot returns the displayed state and the last accepted document.
func (e *Engine) Snapshot() (models.CatState, *models.StatusDocument) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.displayed, e.doc
}

// Run applies updates until ctx is done or updates is closed. Timers are
// stopped before Run returns, so nothing fires afterwards.
func (e *Engine) Run(ctx context.Context, updates <-chan *models.StatusDocument) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(e.events)
	defer e.idle.stop()
	defer e.auto.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case doc, ok := <-updates:
			if !ok {
				return nil
			}
			e.apply(ctx, doc)
		case <-e.auto.C():
			e.auto.clear()
			e.fireAuto(ctx)
		case <-e.idle.C():
			e.idle.clear()
			e.fireIdle(ctx)
		}
	}
}

// apply handles a decoded status document.
func (e *Engine) apply(ctx context.Context, doc *models.StatusDocument) {
	if doc == nil {
		return
	}

	prev := e.current()
	e.setDocument(doc)

	if doc.State == prev {
		e.emit(ctx, Event{Kind: EventDocumentRefreshed, State: prev, Previous: prev, Document: doc})
		return
	}

	e.adopt(doc.State)
	e.idle.arm(e.clock, e.idleTimeout)
	e.emit(ctx, Event{Kind: EventStateChanged, State: doc.State, Previous: prev, Cause: CauseManual, Document: doc})
}

func (e *Engine) fireAuto(ctx context.Context) {
	prev := e.current()
	info := e.table.Info(prev)
	if !info.HasAutoTransition() {
		return
	}

	target := info.AutoTransitionTarget
	log.Printf("[engine] %s expired after %s, now %s", prev, info.AutoTransitionAfter, target)
	e.adopt(target)
	e.emit(ctx, Event{Kind: EventStateChanged, State: target, Previous: prev, Cause: CauseAuto, Document: e.document()})
}

func (e *Engine) fireIdle(ctx context.Context) {
	prev := e.current()
	if prev == models.StateIdle {
		return
	}

	log.Printf("[engine] No update for %s, falling back to idle", e.idleTimeout)
	e.adopt(models.StateIdle)
	e.emit(ctx, Event{Kind: EventStateChanged, State: models.StateIdle, Previous: prev, Cause: CauseIdleTimeout, Document: e.document()})
}

// adopt displays s and replaces the auto-transition timer with the one s
// declares, if any.
func (e *Engine) adopt(s models.CatState) {
	e.mu.Lock()
	e.displayed = s
	e.mu.Unlock()

	e.auto.stop()
	if info := e.table.Info(s); info.HasAutoTransition() {
		e.auto.arm(e.clock, info.AutoTransitionAfter)
	}
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) current() models.CatState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.displayed
}

func (e *Engine) document() *models.StatusDocument {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

func (e *Engine) setDocument(doc *models.StatusDocument) {
	e.mu.Lock()
	e.doc = doc
	e.mu.Unlock()
}
