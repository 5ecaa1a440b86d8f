package slides

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JPM1118/diapo/internal/autoplay"
	"go.uber.org/zap"
)

// DefaultInterval is the auto-play interval used when none is given.
const DefaultInterval = 10 * time.Second

// ErrNoSlides is returned when a controller is built for an empty deck.
var ErrNoSlides = errors.New("presentation has no slides")

// Presenter receives the new position after every transition.
type Presenter interface {
	SlideChanged(current, total int)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(current, total int)

func (f PresenterFunc) SlideChanged(current, total int) { f(current, total) }

// Hooks are optional environment callbacks. They are not part of the
// navigation state.
type Hooks struct {
	OnRequestFullscreen          func()
	OnAutoPlayPausedByVisibility func()

	// OnAutoPlayChanged runs after StartAutoPlay, and after StopAutoPlay
	// when a timer was running. interval is zero once stopped.
	OnAutoPlayChanged func(interval time.Duration, running bool)
}

// Info is a read-only snapshot of the controller position.
type Info struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	IsFirst bool `json:"isFirst"`
	IsLast  bool `json:"isLast"`
}

// Controller owns the current slide index. Index is always within
// [1, total] and total never changes after New.
type Controller struct {
	mu         sync.Mutex
	current    int
	total      int
	presenters []Presenter

	scheduler       autoplay.Scheduler
	defaultInterval time.Duration
	hooks           Hooks
	log             *zap.Logger

	timer    autoplay.Stopper
	interval time.Duration
	gen      uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithPresenter registers a presenter notified on every change.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		c.presenters = append(c.presenters, p)
	}
}

// WithScheduler sets the timer source used by auto-play.
func WithScheduler(s autoplay.Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithHooks sets the environment hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStart sets the initial slide. Out-of-range values are ignored.
func WithStart(n int) Option {
	return func(c *Controller) {
		if n >= 1 && n <= c.total {
			c.current = n
		}
	}
}

// WithDefaultInterval sets the interval StartAutoPlay falls back to.
func WithDefaultInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.defaultInterval = d
		}
	}
}

// New creates a controller positioned on slide 1. Without WithScheduler,
// auto-play uses real tickers.
func New(total int, opts ...Option) (*Controller, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w (total %d)", ErrNoSlides, total)
	}
	c := &Controller{
		current:         1,
		total:           total,
		defaultInterval: DefaultInterval,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheduler == nil {
		c.scheduler = autoplay.NewTicker(context.Background())
	}
	return c, nil
}

// AddPresenter registers another presenter after construction.
func (c *Controller) AddPresenter(p Presenter) {
	c.mu.Lock()
	c.presenters = append(c.presenters, p)
	c.mu.Unlock()
}

// Info returns a snapshot of the current position.
func (c *Controller) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Info{
		Current: c.current,
		Total:   c.total,
		IsFirst: c.current == 1,
		IsLast:  c.current == c.total,
	}
}

// Refresh re-notifies presenters of the current position without moving.
func (c *Controller) Refresh() {
	c.apply(func() int { return c.current })
}

// GoTo jumps to slide n. Targets outside [1, total] are ignored.
// Reports whether the jump happened.
func (c *Controller) GoTo(n int) bool {
	return c.apply(func() int { return n })
}

// Next advances one slide. No-op on the last slide.
func (c *Controller) Next() bool {
	return c.apply(func() int { return c.current + 1 })
}

// Previous goes back one slide. No-op on the first slide.
func (c *Controller) Previous() bool {
	return c.apply(func() int { return c.current - 1 })
}

// StartAutoPlay cancels any running auto-play and starts a new one that
// advances every interval, wrapping from the last slide to the first.
// A non-positive interval uses the default.
func (c *Controller) StartAutoPlay(interval time.Duration) {
	if interval <= 0 {
		interval = c.defaultInterval
	}

	c.mu.Lock()
	c.stopLocked()
	c.gen++
	gen := c.gen
	c.interval = interval
	c.timer = c.scheduler.Every(interval, func() { c.tick(gen) })
	c.mu.Unlock()

	c.log.Info("auto-play started", zap.Duration("interval", interval))
	if c.hooks.OnAutoPlayChanged != nil {
		c.hooks.OnAutoPlayChanged(interval, true)
	}
}

// StopAutoPlay cancels auto-play. Reports whether a timer was running.
func (c *Controller) StopAutoPlay() bool {
	if !c.stop() {
		return false
	}
	if c.hooks.OnAutoPlayChanged != nil {
		c.hooks.OnAutoPlayChanged(0, false)
	}
	return true
}

func (c *Controller) stop() bool {
	c.mu.Lock()
	stopped := c.stopLocked()
	c.mu.Unlock()

	if stopped {
		c.log.Info("auto-play stopped")
	}
	return stopped
}

// AutoPlay reports whether auto-play is running and at what interval.
func (c *Controller) AutoPlay() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval, c.timer != nil
}

// RequestFullscreen forwards to the fullscreen hook, if any.
func (c *Controller) RequestFullscreen() bool {
	if c.hooks.OnRequestFullscreen == nil {
		return false
	}
	c.hooks.OnRequestFullscreen()
	return true
}

// PauseForVisibility stops auto-play because the presentation is no
// longer visible. The pause hook only runs if a timer was active, and it
// replaces OnAutoPlayChanged for this stop.
func (c *Controller) PauseForVisibility() bool {
	if !c.stop() {
		return false
	}
	c.log.Info("presentation paused (not visible)")
	if c.hooks.OnAutoPlayPausedByVisibility != nil {
		c.hooks.OnAutoPlayPausedByVisibility()
	}
	return true
}

func (c *Controller) tick(gen uint64) {
	c.apply(func() int {
		// Superseded or stopped timer.
		if gen != c.gen || c.timer == nil {
			return 0
		}
		if c.current < c.total {
			return c.current + 1
		}
		return 1
	})
}

// apply evaluates target under the lock and, when it is in range, moves
// there and notifies presenters after unlocking.
func (c *Controller) apply(target func() int) bool {
	c.mu.Lock()
	n := target()
	if n < 1 || n > c.total {
		c.mu.Unlock()
		return false
	}
	c.current = n
	total := c.total
	presenters := append([]Presenter(nil), c.presenters...)
	c.mu.Unlock()

	c.log.Debug("navigating to slide", zap.Int("slide", n), zap.Int("total", total))
	for _, p := range presenters {
		p.SlideChanged(n, total)
	}
	return true
}

func (c *Controller) stopLocked() bool {
	if c.timer == nil {
		return false
	}
	c.timer.Stop()
	c.timer = nil
	c.interval = 0
	return true
}
