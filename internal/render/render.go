package render

import (
	"strings"
	"sync"

	"github.com/JPM1118/diapo/internal/deck"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// Themes accepted by New.
var Themes = []string{"dark", "light", "notty", "ascii"}

type cacheKey struct {
	number int
	width  int
}

// Renderer turns slide markdown into terminal output. One glamour
// renderer is kept per width; rendered slides are cached until Reset.
type Renderer struct {
	mu    sync.Mutex
	style ansi.StyleConfig
	width int
	tr    *glamour.TermRenderer
	cache map[cacheKey]string
}

// New creates a renderer for the named theme. Unknown themes use dark.
// The style is fixed up front so glamour never queries the terminal
// while bubbletea owns stdin.
func New(theme string) *Renderer {
	return &Renderer{
		style: styleFor(theme),
		cache: make(map[cacheKey]string),
	}
}

// ValidTheme reports whether theme is one of Themes.
func ValidTheme(theme string) bool {
	for _, t := range Themes {
		if t == theme {
			return true
		}
	}
	return false
}

func styleFor(theme string) ansi.StyleConfig {
	switch theme {
	case "light":
		return glamourstyles.LightStyleConfig
	case "notty":
		return glamourstyles.NoTTYStyleConfig
	case "ascii":
		return glamourstyles.ASCIIStyleConfig
	default:
		return glamourstyles.DarkStyleConfig
	}
}

// Render returns the slide body wrapped to width. On failure the raw
// markdown is returned.
func (r *Renderer) Render(s deck.Slide, width int) string {
	if width <= 0 {
		width = 80
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{number: s.Number, width: width}
	if out, ok := r.cache[key]; ok {
		return out
	}

	if r.tr == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStyles(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return s.Body
		}
		r.tr = tr
		r.width = width
	}

	out, err := r.tr.Render(s.Body)
	if err != nil {
		return s.Body
	}
	out = strings.Trim(out, "\n")
	r.cache[key] = out
	return out
}

// Reset drops cached output, e.g. after the deck is reloaded.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.cache = make(map[cacheKey]string)
	r.mu.Unlock()
}
