package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// Source signals that the target file may have changed. It combines a
// subscription on the file's parent directory with a fixed-interval poll,
// so a missed or unavailable OS notification never hides a change.
type Source struct {
	path     string
	interval time.Duration
	clock    clockwork.Clock

	signals  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	fsWatcher *fsnotify.Watcher
	ticker    clockwork.Ticker
}

// NewSource creates a change source for path polling every interval.
func NewSource(path string, interval time.Duration, clock clockwork.Clock) *Source {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Source{
		path:     path,
		interval: interval,
		clock:    clock,
		signals:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Signals returns the channel of "possible change" signals.
func (s *Source) Signals() <-chan struct{} {
	return s.signals
}

// Start subscribes to the parent directory and starts the poll ticker.
// Calling Start more than once is not supported.
func (s *Source) Start() error {
	// Watch the directory rather than the file: writers replace the file
	// via rename, which changes its identity while the path stays the same.
	dir := filepath.Dir(s.path)
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[watcher] Warning: file notifications unavailable, polling only: %v", err)
	} else if err := fsWatcher.Add(dir); err != nil {
		log.Printf("[watcher] Warning: failed to watch %s, polling only: %v", dir, err)
		_ = fsWatcher.Close()
		fsWatcher = nil
	}
	s.fsWatcher = fsWatcher
	s.ticker = s.clock.NewTicker(s.interval)

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop releases the directory subscription and the ticker and waits for the
// signal goroutine to exit. It is safe to call multiple times.
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.fsWatcher != nil {
			_ = s.fsWatcher.Close()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.wg.Wait()
	})
}

func (s *Source) run() {
	defer s.wg.Done()

	// A nil channel blocks forever, which disables the fsnotify cases
	// when running poll-only.
	var (
		fsEvents <-chan fsnotify.Event
		fsErrors <-chan error
	)
	if s.fsWatcher != nil {
		fsEvents = s.fsWatcher.Events
		fsErrors = s.fsWatcher.Errors
	}
	target := filepath.Base(s.path)

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.Chan():
			s.signal()
		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			// Rename covers atomic writes (write tmp, rename onto target).
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) == 0 {
				continue
			}
			s.signal()
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			log.Printf("[watcher] Watcher error: %v", err)
		}
	}
}

// signal posts a change signal without blocking. A signal that is already
// pending guarantees a later check, so dropping this one loses nothing.
func (s *Source) signal() {
	select {
	case s.signals <- struct{}{}:
	default:
	}
}
