package tray

import (
	"log"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/models"
)

const (
	maxEventSlots = 10
	maxStatSlots  = 4
)

var (
	state    DaemonState
	opts     Options
	onStart  func()
	onExit   func()
	animator *Animator

	headerItem  *systray.MenuItem
	sessionItem *systray.MenuItem
	toolItem    *systray.MenuItem
	errorItem   *systray.MenuItem

	// Pre-allocated stat and event menu slots
	statSlots    [maxStatSlots]*systray.MenuItem
	eventsHeader *systray.MenuItem
	eventSlots   [maxEventSlots]*systray.MenuItem

	notifyItem *systray.MenuItem
	quitItem   *systray.MenuItem

	// menuMu serializes menu refreshes from the event dispatcher and clicks.
	menuMu sync.Mutex
	ready  bool
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the server here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s DaemonState, o Options, onStartFn, onExitFn func()) {
	state = s
	opts = o
	if opts.StateTable == nil {
		opts.StateTable = models.DefaultStateTable()
	}
	if opts.RecentEvents <= 0 || opts.RecentEvents > maxEventSlots {
		opts.RecentEvents = maxEventSlots
	}
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// HandleEvent updates the icon and menu for an engine event.
func HandleEvent(ev engine.Event) {
	if ev.Kind == engine.EventStateChanged && animator != nil {
		animator.Play(ev.State)
	}
	refresh(ev.State, ev.Document)
}

func onReady() {
	animator = NewAnimator(opts.FramesDir, opts.StateTable, nil, systray.SetIcon)
	animator.Play(models.StateIdle)
	systray.SetTooltip("MeowBar")

	menuMu.Lock()
	headerItem = systray.AddMenuItem("", "")
	headerItem.Disable()
	sessionItem = systray.AddMenuItem("", "")
	sessionItem.Disable()
	toolItem = systray.AddMenuItem("", "")
	toolItem.Disable()
	errorItem = systray.AddMenuItem("", "")
	errorItem.Disable()

	systray.AddSeparator()

	for i := 0; i < maxStatSlots; i++ {
		statSlots[i] = systray.AddMenuItem("", "")
		statSlots[i].Disable()
		statSlots[i].Hide()
	}

	eventsHeader = systray.AddMenuItem("Recent Events", "")
	eventsHeader.Disable()
	for i := 0; i < maxEventSlots; i++ {
		eventSlots[i] = systray.AddMenuItem("", "")
		eventSlots[i].Disable()
		eventSlots[i].Hide()
	}

	systray.AddSeparator()

	notifyItem = systray.AddMenuItem("Notifications", "Notify when a task completes or fails")
	if state != nil && state.NotificationsEnabled() {
		notifyItem.Check()
	}
	quitItem = systray.AddMenuItem("Quit MeowBar", "Stop watching the agent")
	ready = true
	menuMu.Unlock()

	// Start the daemon services
	if onStart != nil {
		onStart()
	}

	if state != nil {
		log.Printf("[tray] Watching %s", state.StatusFile())
		current, doc := state.Snapshot()
		refresh(current, doc)
	}

	// Handle click events
	go handleClicks()
}

func onQuit() {
	if animator != nil {
		animator.Stop()
	}
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-notifyItem.ClickedCh:
			toggleNotifications()
		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

func toggleNotifications() {
	if state == nil {
		return
	}
	enabled := !state.NotificationsEnabled()
	state.SetNotificationsEnabled(enabled)

	menuMu.Lock()
	defer menuMu.Unlock()
	if enabled {
		notifyItem.Check()
	} else {
		notifyItem.Uncheck()
	}
}

// refresh redraws every menu item for the displayed state and document.
func refresh(current models.CatState, doc *models.StatusDocument) {
	menuMu.Lock()
	defer menuMu.Unlock()
	if !ready {
		return
	}

	info := opts.StateTable.Info(current)
	headerItem.SetTitle(formatHeader(info))
	systray.SetTooltip(formatTooltip(info, doc))

	setOptional(sessionItem, formatSession(doc))
	setOptional(toolItem, formatTool(doc))
	setOptional(errorItem, formatError(current, doc))

	var stats []string
	if opts.ShowStats {
		stats = formatStats(doc, time.Now())
	}
	for i := 0; i < maxStatSlots; i++ {
		if i < len(stats) {
			statSlots[i].SetTitle(stats[i])
			statSlots[i].Show()
		} else {
			statSlots[i].Hide()
		}
	}

	var events []models.EventEntry
	if opts.ShowEventsLog {
		events = doc.RecentEvents(opts.RecentEvents)
	}
	if len(events) == 0 {
		eventsHeader.Hide()
	} else {
		eventsHeader.Show()
	}
	for i := 0; i < maxEventSlots; i++ {
		if i < len(events) {
			eventSlots[i].SetTitle(formatEvent(events[i]))
			eventSlots[i].Show()
		} else {
			eventSlots[i].Hide()
		}
	}
}

func setOptional(item *systray.MenuItem, title string) {
	if title == "" {
		item.Hide()
		return
	}
	item.SetTitle(title)
	item.Show()
}
