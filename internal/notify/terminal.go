package notify

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Reasons the bell can ring for.
const (
	ReasonBoundary     = "boundary"
	ReasonReloadFailed = "reload-failed"
)

// Bell rings the terminal bell with debounce and suspension.
type Bell struct {
	out       io.Writer
	debounce  time.Duration
	lastRing  time.Time
	suspended bool
	triggerOn map[string]bool
}

// NewBell creates a Bell with the given debounce interval and trigger reasons.
func NewBell(debounce time.Duration, reasons []string) *Bell {
	triggerOn := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		triggerOn[r] = true
	}
	return &Bell{
		out:       os.Stderr,
		debounce:  debounce,
		triggerOn: triggerOn,
	}
}

// SetOutput redirects the bell character.
func (b *Bell) SetOutput(w io.Writer) {
	b.out = w
}

// Ring attempts to ring the terminal bell for the given reason.
// Returns true if the bell actually rang.
func (b *Bell) Ring(reason string, now time.Time) bool {
	if b.suspended {
		return false
	}
	if !b.triggerOn[reason] {
		return false
	}
	if now.Sub(b.lastRing) < b.debounce {
		return false
	}

	fmt.Fprint(b.out, "\a")
	b.lastRing = now
	return true
}

// Suspend disables bell ringing (while auto-play runs).
func (b *Bell) Suspend() {
	b.suspended = true
}

// Resume re-enables bell ringing.
func (b *Bell) Resume() {
	b.suspended = false
}

// IsSuspended returns whether the bell is currently suspended.
func (b *Bell) IsSuspended() bool {
	return b.suspended
}
