package input

import (
	"strconv"

	"github.com/JPM1118/diapo/internal/slides"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMinSwipeDistance is the horizontal drag, in cells, that counts
// as a swipe.
const DefaultMinSwipeDistance = 5

// Action is a normalized input intent.
type Action int

const (
	None Action = iota
	Next
	Previous
	First
	Last
	Jump
	ToggleFullscreen
	ToggleAutoPlay
	Refresh
	ToggleHelp
	Quit
)

var actionNames = map[Action]string{
	None:             "none",
	Next:             "next",
	Previous:         "previous",
	First:            "first",
	Last:             "last",
	Jump:             "jump",
	ToggleFullscreen: "fullscreen",
	ToggleAutoPlay:   "autoplay",
	Refresh:          "refresh",
	ToggleHelp:       "help",
	Quit:             "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Command is an Action plus its target slide for Jump.
type Command struct {
	Action Action
	Slide  int
}

// Zone is a one-line clickable region.
type Zone struct {
	X, Y  int
	Width int
}

// Contains reports whether the cell (x, y) falls inside the zone.
func (z Zone) Contains(x, y int) bool {
	return z.Width > 0 && y == z.Y && x >= z.X && x < z.X+z.Width
}

type point struct{ x, y int }

// Adapter maps raw terminal events to Commands. It tracks the pending
// mouse press between press and release, so it is not safe for
// concurrent use.
type Adapter struct {
	keys     KeyMap
	minSwipe int
	press    *point
	prevZone Zone
	nextZone Zone
}

// NewAdapter creates an adapter. A non-positive minSwipe uses the default.
func NewAdapter(keys KeyMap, minSwipe int) *Adapter {
	if minSwipe <= 0 {
		minSwipe = DefaultMinSwipeDistance
	}
	return &Adapter{keys: keys, minSwipe: minSwipe}
}

// Keys returns the adapter's key map.
func (a *Adapter) Keys() KeyMap {
	return a.keys
}

// SetButtons places the prev/next click targets.
func (a *Adapter) SetButtons(prev, next Zone) {
	a.prevZone = prev
	a.nextZone = next
}

// Key translates a key press.
func (a *Adapter) Key(msg tea.KeyMsg) Command {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return Command{Action: Quit}
	case key.Matches(msg, a.keys.Next):
		return Command{Action: Next}
	case key.Matches(msg, a.keys.Previous):
		return Command{Action: Previous}
	case key.Matches(msg, a.keys.First):
		return Command{Action: First}
	case key.Matches(msg, a.keys.Last):
		return Command{Action: Last}
	case key.Matches(msg, a.keys.Jump):
		n, err := strconv.Atoi(msg.String())
		if err != nil {
			return Command{}
		}
		return Command{Action: Jump, Slide: n}
	case key.Matches(msg, a.keys.Fullscreen):
		return Command{Action: ToggleFullscreen}
	case key.Matches(msg, a.keys.AutoPlay):
		return Command{Action: ToggleAutoPlay}
	case key.Matches(msg, a.keys.Refresh):
		return Command{Action: Refresh}
	case key.Matches(msg, a.keys.Help):
		return Command{Action: ToggleHelp}
	}
	return Command{}
}

// Mouse translates mouse events. A left press starts a gesture; the
// release resolves it as a swipe, a button click, or nothing.
func (a *Adapter) Mouse(msg tea.MouseMsg) Command {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			a.press = &point{x: msg.X, y: msg.Y}
		}
		return Command{}

	case tea.MouseActionRelease:
		if a.press == nil {
			return Command{}
		}
		start := *a.press
		a.press = nil

		if act := ClassifySwipe(msg.X-start.x, msg.Y-start.y, a.minSwipe); act != None {
			return Command{Action: act}
		}
		switch {
		case a.prevZone.Contains(start.x, start.y) && a.prevZone.Contains(msg.X, msg.Y):
			return Command{Action: Previous}
		case a.nextZone.Contains(start.x, start.y) && a.nextZone.Contains(msg.X, msg.Y):
			return Command{Action: Next}
		}
	}
	return Command{}
}

// ClassifySwipe turns a drag delta into a navigation action. The drag
// must be mostly horizontal and longer than minDistance. Dragging right
// goes back, dragging left goes forward.
func ClassifySwipe(dx, dy, minDistance int) Action {
	adx, ady := abs(dx), abs(dy)
	if adx <= ady || adx <= minDistance {
		return None
	}
	if dx > 0 {
		return Previous
	}
	return Next
}

// Dispatch applies a navigation or fullscreen command to the controller.
// It reports whether the controller acted; UI-only commands report false.
func Dispatch(c *slides.Controller, cmd Command) bool {
	switch cmd.Action {
	case Next:
		return c.Next()
	case Previous:
		return c.Previous()
	case First:
		return c.GoTo(1)
	case Last:
		return c.GoTo(c.Info().Total)
	case Jump:
		return c.GoTo(cmd.Slide)
	case ToggleFullscreen:
		return c.RequestFullscreen()
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
