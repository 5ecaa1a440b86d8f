package notify

import (
	"fmt"
	"time"
)

// Notification is a transient notice shown under the slide.
type Notification struct {
	Text      string
	Timestamp time.Time
}

// Bar manages a FIFO queue of notification entries.
type Bar struct {
	items    []Notification
	maxStore int
}

// NewBar creates a notification bar with the given buffer size.
func NewBar(maxStore int) *Bar {
	if maxStore < 1 {
		maxStore = 1
	}
	return &Bar{
		items:    make([]Notification, 0, maxStore),
		maxStore: maxStore,
	}
}

// Push adds a notification, trimming oldest if at capacity.
func (b *Bar) Push(n Notification) {
	b.items = append(b.items, n)
	if len(b.items) > b.maxStore {
		b.items = b.items[len(b.items)-b.maxStore:]
	}
}

// Pushf adds a formatted notice stamped with now.
func (b *Bar) Pushf(now time.Time, format string, args ...any) {
	b.Push(Notification{Text: fmt.Sprintf(format, args...), Timestamp: now})
}

// Visible returns the most recent notifications (max 2).
func (b *Bar) Visible() []Notification {
	if len(b.items) <= 2 {
		return b.items
	}
	return b.items[len(b.items)-2:]
}

// Clear drops every notification.
func (b *Bar) Clear() {
	b.items = b.items[:0]
}

// Len returns the total number of buffered notifications.
func (b *Bar) Len() int {
	return len(b.items)
}

// Render formats the visible notifications for display within the given width.
func (b *Bar) Render(width int, now time.Time) string {
	visible := b.Visible()
	if len(visible) == 0 {
		return ""
	}

	result := ""
	for i, n := range visible {
		if i > 0 {
			result += " │ "
		}
		result += formatNotification(n, now)
	}

	runes := []rune(result)
	if len(runes) > width {
		if width > 1 {
			result = string(runes[:width-1]) + "…"
		} else if width > 0 {
			result = string(runes[:width])
		} else {
			result = ""
		}
	}

	return result
}

func formatNotification(n Notification, now time.Time) string {
	age := now.Sub(n.Timestamp).Truncate(time.Second)
	var ageStr string
	if age < time.Minute {
		ageStr = fmt.Sprintf("%ds ago", int(age.Seconds()))
	} else if age < time.Hour {
		ageStr = fmt.Sprintf("%dm ago", int(age.Minutes()))
	} else {
		ageStr = fmt.Sprintf("%dh ago", int(age.Hours()))
	}

	return fmt.Sprintf("● %s (%s)", n.Text, ageStr)
}
