package app

import (
	"time"
)

// Throttle admits at most one call per interval during continuous
// activity. Leading edge: the first call after a quiet period is admitted
// immediately, so gestures get instant feedback.
type Throttle struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewThrottle builds a throttle with the given minimum interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// Allow reports whether a call may proceed now and, if so, consumes the
// current window.
func (t *Throttle) Allow() bool {
	n := t.now()
	if t.last.IsZero() || n.Sub(t.last) >= t.interval {
		t.last = n
		return true
	}
	return false
}

// Reset clears the window so the next Allow passes immediately. Called at
// gesture start.
func (t *Throttle) Reset() {
	t.last = time.Time{}
}

// Debounce applies only the final value after a quiet period. Used where
// intermediate states do not matter, e.g. viewport commits under a
// continuous wheel stream.
type Debounce struct {
	interval time.Duration
	timer    *time.Timer
}

// NewDebounce builds a debounce with the given quiet period.
func NewDebounce(interval time.Duration) *Debounce {
	return &Debounce{interval: interval}
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (d *Debounce) Trigger(fn func()) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Cancel discards any pending call. Invoked on teardown so a callback
// never fires into a torn-down component.
func (d *Debounce) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
