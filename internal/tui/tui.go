// Package tui implements the live terminal view of the cat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/daemon/server"
	"github.com/meowbar/meowbar/internal/models"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run starts srv and shows its events until the user quits. srv must not
// have been started yet; it is stopped before Run returns.
func Run(ctx context.Context, srv *server.Server, table models.StateTable, recentEvents int) error {
	ref := &programRef{}
	srv.AddListener(server.ListenerFunc(func(ev engine.Event) {
		ref.Send(EngineEventMsg{Event: ev})
	}))

	model := NewModel(table, srv.StatusFile(), recentEvents)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Store program reference for goroutine sends
	ref.Set(p)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	_, err := p.Run()
	ref.Clear()
	srv.Stop()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
