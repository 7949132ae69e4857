package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottleLeadingEdge(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottle(100 * time.Millisecond)
	th.now = func() time.Time { return now }

	if !th.Allow() {
		t.Fatal("first call should pass immediately")
	}
	now = now.Add(30 * time.Millisecond)
	if th.Allow() {
		t.Error("call inside window should be dropped")
	}
	now = now.Add(30 * time.Millisecond)
	if th.Allow() {
		t.Error("second call inside window should be dropped")
	}
	now = now.Add(50 * time.Millisecond)
	if !th.Allow() {
		t.Error("call after window should pass")
	}
}

func TestThrottleReset(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottle(time.Hour)
	th.now = func() time.Time { return now }

	if !th.Allow() {
		t.Fatal("first call should pass")
	}
	if th.Allow() {
		t.Fatal("window should still be closed")
	}
	th.Reset()
	if !th.Allow() {
		t.Error("Allow after Reset should pass immediately")
	}
}

func TestDebounceCoalesces(t *testing.T) {
	var fired atomic.Int32
	d := NewDebounce(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired.Add(1) })
	}
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

func TestDebounceCancel(t *testing.T) {
	var fired atomic.Int32
	d := NewDebounce(10 * time.Millisecond)
	d.Trigger(func() { fired.Add(1) })
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled debounce fired %d times", got)
	}
}
