package autoplay

import (
	"context"
	"sync"
	"time"
)

// Stopper cancels a running timer.
type Stopper interface {
	Stop()
}

// Scheduler starts repeating timers. Ticker implements this interface.
// Tests can provide fakes that fire on demand.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Stopper
}

// Ticker schedules timers bound to a parent context. When the context
// ends, every timer it started stops.
type Ticker struct {
	ctx context.Context
}

var _ Scheduler = (*Ticker)(nil)

// NewTicker creates a scheduler whose timers live no longer than ctx.
func NewTicker(ctx context.Context) *Ticker {
	return &Ticker{ctx: ctx}
}

// Every starts a timer that calls fn once per interval.
func (t *Ticker) Every(interval time.Duration, fn func()) Stopper {
	timer := newTimer(interval, fn)
	go timer.run(t.ctx)
	return timer
}

// Timer runs fn on every tick until stopped.
type Timer struct {
	interval time.Duration
	fn       func()
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func newTimer(interval time.Duration, fn func()) *Timer {
	return &Timer{
		interval: interval,
		fn:       fn,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Stop cancels the timer. It does not wait for the loop to exit, so it
// is safe to call from inside fn. Calling Stop more than once is a no-op.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

// Wait blocks until the timer goroutine has exited.
func (t *Timer) Wait() {
	<-t.doneCh
}

// Interval returns the tick interval.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) run(ctx context.Context) {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			// Stop may race with a pending tick.
			select {
			case <-t.stopCh:
				return
			default:
			}
			t.fn()
		}
	}
}
