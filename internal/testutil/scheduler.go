package testutil

import (
	"sync"
	"time"

	"github.com/JPM1118/diapo/internal/autoplay"
)

// FakeScheduler implements autoplay.Scheduler for testing. Timers never
// fire on their own; tests call Fire.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

var _ autoplay.Scheduler = (*FakeScheduler)(nil)

func (s *FakeScheduler) Every(interval time.Duration, fn func()) autoplay.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{Interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Timers returns every timer ever scheduled, oldest first.
func (s *FakeScheduler) Timers() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeTimer(nil), s.timers...)
}

// Active returns the timers that have not been stopped.
func (s *FakeScheduler) Active() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*FakeTimer
	for _, t := range s.timers {
		if !t.Stopped() {
			active = append(active, t)
		}
	}
	return active
}

// Fire ticks every active timer once.
func (s *FakeScheduler) Fire() {
	for _, t := range s.Active() {
		t.Fire()
	}
}

// FakeTimer is a manually driven timer.
type FakeTimer struct {
	Interval time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *FakeTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (t *FakeTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire runs the callback if the timer is still active.
func (t *FakeTimer) Fire() {
	if t.Stopped() {
		return
	}
	t.fn()
}

// FireLate runs the callback even after Stop, like a tick that was
// already in flight when the timer was cancelled.
func (t *FakeTimer) FireLate() {
	t.fn()
}
