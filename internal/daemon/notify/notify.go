// Package notify sends desktop notifications for important state changes.
package notify

import (
	"log"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/models"
)

// Title is used for every notification.
const Title = "MeowBar"

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(title, body string) error
}

// BeeepNotifier sends OS notifications through beeep.
type BeeepNotifier struct {
	// Icon is an optional path to an image shown with the notification.
	Icon string
}

// Notify implements Notifier.
func (n BeeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, n.Icon)
}

// Message returns the notification body for a transition into state, or
// "" when the state is not worth a notification.
func Message(state models.CatState, errorMessage string) string {
	switch state {
	case models.StateComplete:
		return "Task complete! Cat is waiting for praise"
	case models.StateError:
		if errorMessage == "" {
			errorMessage = "Something went wrong"
		}
		return "Error: " + errorMessage
	default:
		return ""
	}
}

// Dispatcher turns engine events into notifications.
type Dispatcher struct {
	notifier Notifier
	enabled  atomic.Bool
}

// NewDispatcher creates a dispatcher sending through n.
func NewDispatcher(n Notifier, enabled bool) *Dispatcher {
	d := &Dispatcher{notifier: n}
	d.enabled.Store(enabled)
	return d
}

// Enabled reports whether notifications are sent.
func (d *Dispatcher) Enabled() bool {
	return d.enabled.Load()
}

// SetEnabled turns notifications on or off.
func (d *Dispatcher) SetEnabled(v bool) {
	d.enabled.Store(v)
}

// HandleEvent notifies on manual transitions only; auto and idle
// transitions are the cat's own business.
func (d *Dispatcher) HandleEvent(ev engine.Event) {
	if ev.Kind != engine.EventStateChanged || ev.Cause != engine.CauseManual || !d.Enabled() {
		return
	}

	body := Message(ev.State, ev.Document.Error())
	if body == "" {
		return
	}
	if err := d.notifier.Notify(Title, body); err != nil {
		log.Printf("[notify] Failed to send notification: %v", err)
	}
}
