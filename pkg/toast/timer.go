package toast

import (
	"sync/atomic"
	"time"
)

// lifecycleTimer is the one-shot auto-dismiss countdown armed for a record
// with a positive duration. Expiry requests removal through the manager's
// central dismissal path, so a timer that fires after its record is already
// gone resolves to a no-op by construction.
type lifecycleTimer struct {
	timer *time.Timer

	// fired prevents a double fire when Stop races the expiry callback:
	// AfterFunc may have already started the callback when Stop is called.
	fired atomic.Bool
}

// armTimer schedules expire(id) after d on a new goroutine.
func armTimer(id string, d time.Duration, expire func(id string)) *lifecycleTimer {
	lt := &lifecycleTimer{}
	lt.timer = time.AfterFunc(d, func() {
		if lt.fired.CompareAndSwap(false, true) {
			expire(id)
		}
	})
	return lt
}

// Stop cancels the countdown. Safe to call multiple times and after expiry.
func (lt *lifecycleTimer) Stop() {
	lt.fired.Store(true)
	lt.timer.Stop()
}
