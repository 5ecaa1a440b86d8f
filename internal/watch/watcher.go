package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/JPM1118/diapo/internal/deck"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches editor save bursts into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Event reports the outcome of a reload.
type Event struct {
	Deck *deck.Deck
	Err  error
}

// Source delivers reloaded decks.
type Source interface {
	Events() <-chan Event
	Start(ctx context.Context)
	TriggerNow()
	Close() error
}

var (
	_ Source = (*Watcher)(nil)
	_ Source = (*Poller)(nil)
)

// Watcher reloads a deck file when it changes on disk. It watches the
// parent directory so editors that replace the file on save still work.
type Watcher struct {
	path      string
	debounce  time.Duration
	log       *zap.Logger
	fs        *fsnotify.Watcher
	events    chan Event
	triggerCh chan struct{}
	doneCh    chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

// New creates a watcher for the deck at path.
func New(path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	return &Watcher{
		path:      abs,
		debounce:  debounce,
		log:       log,
		fs:        fsw,
		events:    make(chan Event, 1),
		triggerCh: make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
	}, nil
}

// Events returns the channel that receives reload results.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching in a goroutine. It stops when ctx is cancelled
// or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.run(ctx)
}

// TriggerNow requests an immediate reload.
func (w *Watcher) TriggerNow() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		// Already triggered, skip
	}
}

// Close stops watching and waits for the loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	err := w.fs.Close()
	if started {
		<-w.doneCh
	}
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("deck changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()

		case <-w.triggerCh:
			w.reload()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) reload() {
	d, err := deck.Load(w.path)
	if err != nil {
		w.log.Warn("deck reload failed", zap.Error(err))
	} else {
		w.log.Info("deck reloaded", zap.Int("slides", d.Len()))
	}
	emit(w.events, Event{Deck: d, Err: err})
}

// emit keeps only the newest result if the reader is behind.
func emit(ch chan Event, e Event) {
	select {
	case ch <- e:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- e:
		default:
		}
	}
}
