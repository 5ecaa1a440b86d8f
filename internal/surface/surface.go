package surface

import (
	"time"

	"github.com/JPM1118/diapo/internal/slides"
)

// Kind identifies what a surface Event reports.
type Kind int

const (
	SlideChanged Kind = iota
	FullscreenRequested
	AutoPlayPaused
	AutoPlayChanged
)

func (k Kind) String() string {
	switch k {
	case SlideChanged:
		return "slide-changed"
	case FullscreenRequested:
		return "fullscreen-requested"
	case AutoPlayPaused:
		return "autoplay-paused"
	case AutoPlayChanged:
		return "autoplay-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to the UI for every controller notification.
type Event struct {
	Kind    Kind
	Current int
	Total   int

	// Interval is set on AutoPlayChanged; zero means auto-play stopped.
	Interval time.Duration
}

// Surface turns controller notifications and hooks into events on a
// buffered channel. It never blocks the caller: when the buffer is full
// the oldest event is dropped.
type Surface struct {
	events chan Event
}

var _ slides.Presenter = (*Surface)(nil)

// New creates a surface with the given buffer size.
func New(buffer int) *Surface {
	if buffer <= 0 {
		buffer = 1
	}
	return &Surface{events: make(chan Event, buffer)}
}

// Events returns the channel that receives surface events.
func (s *Surface) Events() <-chan Event {
	return s.events
}

// SlideChanged implements slides.Presenter.
func (s *Surface) SlideChanged(current, total int) {
	s.emit(Event{Kind: SlideChanged, Current: current, Total: total})
}

// Hooks returns controller hooks that report through this surface.
func (s *Surface) Hooks() slides.Hooks {
	return slides.Hooks{
		OnRequestFullscreen: func() {
			s.emit(Event{Kind: FullscreenRequested})
		},
		OnAutoPlayPausedByVisibility: func() {
			s.emit(Event{Kind: AutoPlayPaused})
		},
		OnAutoPlayChanged: func(interval time.Duration, running bool) {
			if !running {
				interval = 0
			}
			s.emit(Event{Kind: AutoPlayChanged, Interval: interval})
		},
	}
}

func (s *Surface) emit(e Event) {
	select {
	case s.events <- e:
	default:
		// Drain one and resend
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- e:
		default:
		}
	}
}
