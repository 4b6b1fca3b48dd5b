package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// timerHandle owns at most one pending timer. Arming replaces the timer and
// its channel, so a superseded timer that already fired is never received.
type timerHandle struct {
	t clockwork.Timer
}

func (h *timerHandle) arm(clock clockwork.Clock, d time.Duration) {
	h.stop()
	h.t = clock.NewTimer(d)
}

func (h *timerHandle) stop() {
	if h.t != nil {
		h.t.Stop()
		h.t = nil
	}
}

// clear forgets a timer that has fired.
func (h *timerHandle) clear() {
	h.t = nil
}

// C returns the pending timer's channel, or nil (blocks forever) when unarmed.
func (h *timerHandle) C() <-chan time.Time {
	if h.t == nil {
		return nil
	}
	return h.t.Chan()
}
