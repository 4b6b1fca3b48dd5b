// Package watcher turns changes of the status file into decoded documents.
package watcher

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/models"
)

// DefaultPollInterval is how often the file is re-checked regardless of
// file notifications.
const DefaultPollInterval = time.Second

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock sets the clock driving the poll ticker.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithVerbose logs dropped documents that fail to decode.
func WithVerbose(v bool) Option {
	return func(w *Watcher) { w.verbose = v }
}

// Watcher watches one status file and emits a document for every change
// that decodes successfully. Changes are keyed by modification time: a
// signal for an mtime already seen is ignored.
type Watcher struct {
	path         string
	clock        clockwork.Clock
	pollInterval time.Duration
	verbose      bool

	source  *Source
	updates chan *models.StatusDocument

	// Only touched by Start and then the loop goroutine.
	lastModified time.Time
	lastErr      string

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher for the status file at path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:         path,
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
		updates:      make(chan *models.StatusDocument, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Updates returns the channel of decoded documents. It is closed once the
// watcher has stopped.
func (w *Watcher) Updates() <-chan *models.StatusDocument {
	return w.updates
}

// Start creates the status file if needed, emits its current content and
// begins watching for changes.
func (w *Watcher) Start(ctx context.Context) error {
	if err := config.EnsureStatusFile(w.path); err != nil {
		// Not fatal: the writer may create it later and polling will pick it up.
		log.Printf("[watcher] Warning: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if info, err := os.Stat(w.path); err == nil {
		w.lastModified = info.ModTime()
	}
	w.readAndEmit(ctx)

	w.source = NewSource(w.path, w.pollInterval, w.clock)
	if err := w.source.Start(); err != nil {
		cancel()
		return err
	}

	log.Printf("[watcher] Watching %s", w.path)

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop stops watching. No document is emitted after Stop returns.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		if w.source != nil {
			w.source.Stop()
		}
		w.wg.Wait()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.updates)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.source.Signals():
			w.check(ctx)
		}
	}
}

// check decodes the file when its modification time moved forward.
func (w *Watcher) check(ctx context.Context) {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logIOError(err)
		return
	}

	modified := info.ModTime()
	if !w.lastModified.IsZero() && !modified.After(w.lastModified) {
		return
	}
	w.lastModified = modified
	w.readAndEmit(ctx)
}

// readAndEmit decodes the file and posts the document. Undecodable content
// is dropped: the writer may be mid-write, and the last good state stays.
func (w *Watcher) readAndEmit(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logIOError(err)
		return
	}
	w.lastErr = ""

	doc, err := models.DecodeStatus(data)
	if err != nil {
		if w.verbose {
			log.Printf("[watcher] Ignoring %s: %v", w.path, err)
		}
		return
	}

	select {
	case w.updates <- doc:
	case <-ctx.Done():
	}
}

// logIOError logs an I/O error once until it changes or clears.
func (w *Watcher) logIOError(err error) {
	if msg := err.Error(); msg != w.lastErr {
		w.lastErr = msg
		log.Printf("[watcher] Failed to read %s: %v", w.path, err)
	}
}
