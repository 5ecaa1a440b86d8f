package input

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds one binding per action.
type KeyMap struct {
	Next       key.Binding
	Previous   key.Binding
	First      key.Binding
	Last       key.Binding
	Jump       key.Binding
	Fullscreen key.Binding
	AutoPlay   key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard presentation bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", " ", "l"),
			key.WithHelp("→/space", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g", "esc"),
			key.WithHelp("home/esc", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last"),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to slide"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("p", "P", "ctrl+f", "f11"),
			key.WithHelp("p", "fullscreen"),
		),
		AutoPlay: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto-play"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Fullscreen, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.First, k.Last},
		{k.Jump, k.AutoPlay, k.Fullscreen},
		{k.Refresh, k.Help, k.Quit},
	}
}
