// Package server wires the status watcher to the transition engine and
// delivers engine events to the presentation layer.
package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/daemon/watcher"
	"github.com/meowbar/meowbar/internal/models"
)

// Listener receives engine events in the order they were applied.
type Listener interface {
	HandleEvent(ev engine.Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev engine.Event)

// HandleEvent calls f(ev).
func (f ListenerFunc) HandleEvent(ev engine.Event) { f(ev) }

// Config holds the runtime settings of a Server.
type Config struct {
	StatusFile   string
	PollInterval time.Duration
	IdleTimeout  time.Duration
	StateTable   models.StateTable
	Clock        clockwork.Clock
	Verbose      bool
}

// Server runs one watcher and one engine.
type Server struct {
	watcher   *watcher.Watcher
	engine    *engine.Engine
	listeners []Listener

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a server for cfg. Listeners are called from a single
// goroutine, one event at a time.
func New(cfg Config, listeners ...Listener) (*Server, error) {
	if cfg.StatusFile == "" {
		return nil, fmt.Errorf("status file path is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	engineOpts := []engine.Option{
		engine.WithClock(clock),
		engine.WithIdleTimeout(cfg.IdleTimeout),
	}
	if cfg.StateTable != nil {
		engineOpts = append(engineOpts, engine.WithStateTable(cfg.StateTable))
	}
	eng, err := engine.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid state table: %w", err)
	}

	w := watcher.New(cfg.StatusFile,
		watcher.WithClock(clock),
		watcher.WithPollInterval(cfg.PollInterval),
		watcher.WithVerbose(cfg.Verbose),
	)

	return &Server{
		watcher:   w,
		engine:    eng,
		listeners: listeners,
	}, nil
}

// AddListener registers l. It must be called before Start.
func (s *Server) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// StatusFile returns the watched status file path.
func (s *Server) StatusFile() string {
	return s.watcher.Path()
}

// Snapshot returns the displayed state and the last accepted document.
func (s *Server) Snapshot() (models.CatState, *models.StatusDocument) {
	return s.engine.Snapshot()
}

// Start runs the engine and the dispatcher, then starts watching.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.engine.Run(ctx, s.watcher.Updates()); err != nil {
			log.Printf("[server] Engine stopped: %v", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		s.dispatch()
	}()

	if err := s.watcher.Start(ctx); err != nil {
		s.Stop()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return nil
}

// Stop stops the watcher, the engine and the dispatcher and waits for all
// of them. No listener is called after Stop returns.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.watcher.Stop()
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
	})
}

func (s *Server) dispatch() {
	for ev := range s.engine.Events() {
		if ev.Kind == engine.EventStateChanged {
			log.Printf("[server] %s -> %s (%s)", ev.Previous, ev.State, ev.Cause)
		}
		for _, l := range s.listeners {
			l.HandleEvent(ev)
		}
	}
}

// TrayState adapts a Server to the tray.DaemonState interface.
type TrayState struct {
	srv *Server
}

// NewTrayState creates a TrayState for the given server.
func NewTrayState(srv *Server) *TrayState {
	return &TrayState{srv: srv}
}

// Snapshot returns the displayed state and document.
func (t *TrayState) Snapshot() (models.CatState, *models.StatusDocument) {
	return t.srv.Snapshot()
}

// StatusFile returns the watched status file path.
func (t *TrayState) StatusFile() string {
	return t.srv.StatusFile()
}

// RequestShutdown sends SIGINT to the current process to trigger a graceful shutdown.
func (t *TrayState) RequestShutdown() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(syscall.SIGINT)
}
