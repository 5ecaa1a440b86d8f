package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JPM1118/diapo/internal/deck"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is how often a Poller stats the deck file.
	DefaultPollInterval = time.Second

	// MaxBackoff caps the interval between polls while the file is missing.
	MaxBackoff = 30 * time.Second
)

// fileState tracks what the last successful stat saw.
type fileState struct {
	modTime      time.Time
	size         int64
	consecFails  int
	backoffUntil time.Time
}

func (s *fileState) shouldPoll(now time.Time) bool {
	return !now.Before(s.backoffUntil)
}

// recordSuccess stores fi and reports whether the file changed since the
// last successful stat.
func (s *fileState) recordSuccess(fi os.FileInfo) bool {
	changed := !fi.ModTime().Equal(s.modTime) || fi.Size() != s.size
	s.modTime = fi.ModTime()
	s.size = fi.Size()
	s.consecFails = 0
	s.backoffUntil = time.Time{}
	return changed
}

// recordFailure backs off exponentially: base * 2^(fails-1), capped at MaxBackoff.
func (s *fileState) recordFailure(base time.Duration, now time.Time) {
	s.consecFails++

	backoff := base
	for i := 1; i < s.consecFails; i++ {
		backoff *= 2
		if backoff > MaxBackoff {
			backoff = MaxBackoff
			break
		}
	}
	s.backoffUntil = now.Add(backoff)
}

// Poller reloads a deck by polling its modification time. It serves
// filesystems where change notifications are unavailable.
type Poller struct {
	path      string
	interval  time.Duration
	log       *zap.Logger
	events    chan Event
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	state   fileState
	started bool
}

// NewPoller creates a poller for the deck at path. The file must exist.
func NewPoller(path string, interval time.Duration, log *zap.Logger) (*Poller, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", path, err)
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Poller{
		path:      abs,
		interval:  interval,
		log:       log,
		events:    make(chan Event, 1),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	p.state.recordSuccess(fi)
	return p, nil
}

// Events returns the channel that receives reload results.
func (p *Poller) Events() <-chan Event {
	return p.events
}

// Start begins polling in a goroutine.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.run(ctx)
}

// TriggerNow requests an immediate poll.
func (p *Poller) TriggerNow() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// Already triggered, skip
	}
}

// Close stops polling and waits for the loop to exit.
func (p *Poller) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.doneCh
	}
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll(time.Now())
		case <-p.triggerCh:
			p.poll(time.Now())
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) poll(now time.Time) {
	p.mu.Lock()
	if !p.state.shouldPoll(now) {
		p.mu.Unlock()
		return
	}

	fi, err := os.Stat(p.path)
	if err != nil {
		p.state.recordFailure(p.interval, now)
		first := p.state.consecFails == 1
		p.mu.Unlock()

		// Report a missing file once, not on every retry.
		if first {
			p.log.Warn("deck stat failed", zap.Error(err))
			emit(p.events, Event{Err: err})
		}
		return
	}
	changed := p.state.recordSuccess(fi)
	p.mu.Unlock()

	if !changed {
		return
	}

	d, err := deck.Load(p.path)
	if err != nil {
		p.log.Warn("deck reload failed", zap.Error(err))
	} else {
		p.log.Info("deck reloaded", zap.Int("slides", d.Len()))
	}
	emit(p.events, Event{Deck: d, Err: err})
}
