package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorHeader   = lipgloss.Color("12") // bright blue
	colorMuted    = lipgloss.Color("8")  // dim
	colorActive   = lipgloss.Color("6")  // cyan
	colorAutoPlay = lipgloss.Color("3")  // yellow
	colorButton   = lipgloss.Color("15") // white
	colorButtonBg = lipgloss.Color("4")  // blue

	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader)

	subheaderStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	slideTitleStyle = lipgloss.NewStyle().
			Foreground(colorActive).
			Bold(true)

	counterStyle = lipgloss.NewStyle().
			Foreground(colorActive).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorButton).
			Background(colorButtonBg)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Faint(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	notificationBarStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorAutoPlay).
			Bold(true)
)

// navButtonStyle returns the style for a prev/next button.
func navButtonStyle(enabled bool) lipgloss.Style {
	if enabled {
		return buttonStyle
	}
	return disabledButtonStyle
}
