package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/JPM1118/diapo/internal/deck"
	"github.com/JPM1118/diapo/internal/input"
	"github.com/JPM1118/diapo/internal/notify"
	"github.com/JPM1118/diapo/internal/render"
	"github.com/JPM1118/diapo/internal/slides"
	"github.com/JPM1118/diapo/internal/surface"
	"github.com/JPM1118/diapo/internal/watch"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

const (
	minWidth    = 40
	minHeight   = 10
	headerLines = 2 // header + separator
	footerLines = 2 // notification bar + navigation bar
	prevLabel   = " ‹ prev "
	nextLabel   = " next › "
)

// Builder creates a controller for a deck of total slides positioned on
// start. It is used again when the deck is reloaded.
type Builder func(total, start int) (*slides.Controller, error)

// Messages

type surfaceMsg surface.Event

type reloadMsg watch.Event

// Show is the Bubble Tea model presenting a deck.
type Show struct {
	deck     *deck.Deck
	ctrl     *slides.Controller
	build    Builder
	events   <-chan surface.Event
	source   watch.Source
	renderer *render.Renderer
	input    *input.Adapter
	help     help.Model
	bar      *notify.Bar
	bell     *notify.Bell
	log      *zap.Logger
	now      func() time.Time

	interval    time.Duration
	autoPlaying bool
	fullscreen  bool
	width       int
	height      int
}

// Option configures a Show.
type Option func(*Show)

// WithEvents subscribes the view to a surface's events.
func WithEvents(ch <-chan surface.Event) Option {
	return func(s *Show) { s.events = ch }
}

// WithReloads subscribes the view to deck reloads from src. The refresh
// key asks src to reload immediately.
func WithReloads(src watch.Source) Option {
	return func(s *Show) { s.source = src }
}

// WithBuilder sets how controllers are rebuilt after a reload.
func WithBuilder(b Builder) Option {
	return func(s *Show) { s.build = b }
}

// WithRenderer sets the markdown renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Show) { s.renderer = r }
}

// WithInput sets the input adapter.
func WithInput(a *input.Adapter) Option {
	return func(s *Show) { s.input = a }
}

// WithNotifyBar sets the notification bar.
func WithNotifyBar(b *notify.Bar) Option {
	return func(s *Show) { s.bar = b }
}

// WithBell enables the terminal bell.
func WithBell(b *notify.Bell) Option {
	return func(s *Show) { s.bell = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Show) { s.log = l }
}

// WithAutoPlayInterval sets the interval used when auto-play is toggled on.
func WithAutoPlayInterval(d time.Duration) Option {
	return func(s *Show) { s.interval = d }
}

// WithFullscreen records whether the program starts on the alternate screen.
func WithFullscreen(on bool) Option {
	return func(s *Show) { s.fullscreen = on }
}

// WithClock overrides time.Now for notification ages.
func WithClock(now func() time.Time) Option {
	return func(s *Show) { s.now = now }
}

// NewShow creates a view of d driven by ctrl.
func NewShow(d *deck.Deck, ctrl *slides.Controller, opts ...Option) Show {
	s := Show{
		deck:       d,
		ctrl:       ctrl,
		renderer:   render.New("dark"),
		input:      input.NewAdapter(input.DefaultKeyMap(), 0),
		help:       help.New(),
		bar:        notify.NewBar(20),
		log:        zap.NewNop(),
		now:        time.Now,
		interval:   slides.DefaultInterval,
		fullscreen: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if _, running := ctrl.AutoPlay(); running {
		s.autoPlaying = true
		if s.bell != nil {
			s.bell.Suspend()
		}
	}
	return s
}

// Controller returns the controller currently driving the view.
func (s Show) Controller() *slides.Controller {
	return s.ctrl
}

// Init subscribes to controller and reload events.
func (s Show) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(s.deck.Title),
		waitForEvent(s.events),
		waitForReload(s.source),
	)
}

func waitForEvent(ch <-chan surface.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return surfaceMsg(e)
	}
}

func waitForReload(src watch.Source) tea.Cmd {
	if src == nil {
		return nil
	}
	ch := src.Events()
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(e)
	}
}

// Update handles messages.
func (s Show) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return s.handleCommand(s.input.Key(msg))

	case tea.MouseMsg:
		return s.handleCommand(s.input.Mouse(msg))

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.help.Width = msg.Width
		s.layoutButtons()
		return s, nil

	case tea.BlurMsg:
		s.ctrl.PauseForVisibility()
		return s, nil

	case tea.FocusMsg:
		s.log.Debug("presentation resumed")
		return s, nil

	case surfaceMsg:
		return s.handleSurface(surface.Event(msg))

	case reloadMsg:
		return s.handleReload(watch.Event(msg))
	}

	return s, nil
}

func (s Show) handleCommand(c input.Command) (tea.Model, tea.Cmd) {
	switch c.Action {
	case input.None:
		return s, nil

	case input.Quit:
		s.ctrl.StopAutoPlay()
		return s, tea.Quit

	case input.ToggleHelp:
		s.help.ShowAll = !s.help.ShowAll
		return s, nil

	case input.ToggleAutoPlay:
		s.toggleAutoPlay()
		return s, nil

	case input.Refresh:
		s.renderer.Reset()
		s.bar.Clear()
		s.ctrl.Refresh()
		if s.source != nil {
			s.source.TriggerNow()
		}
		return s, nil

	case input.ToggleFullscreen:
		// Without a hook the view toggles itself.
		if !s.ctrl.RequestFullscreen() {
			return s.toggleFullscreen()
		}
		return s, nil
	}

	moved := input.Dispatch(s.ctrl, c)
	if !moved && (c.Action == input.Next || c.Action == input.Previous) && s.bell != nil {
		s.bell.Ring(notify.ReasonBoundary, s.now())
	}
	return s, nil
}

func (s Show) handleSurface(e surface.Event) (tea.Model, tea.Cmd) {
	next := waitForEvent(s.events)

	switch e.Kind {
	case surface.FullscreenRequested:
		m, cmd := s.toggleFullscreen()
		return m, tea.Batch(cmd, next)

	case surface.AutoPlayPaused:
		s.autoPlaying = false
		s.bar.Pushf(s.now(), "Presentation paused (terminal not focused)")
		if s.bell != nil {
			s.bell.Resume()
		}

	case surface.AutoPlayChanged:
		s.syncAutoPlay()

	case surface.SlideChanged:
		s.log.Debug("slide changed", zap.Int("slide", e.Current), zap.Int("total", e.Total))
	}
	return s, next
}

func (s Show) handleReload(e watch.Event) (tea.Model, tea.Cmd) {
	next := waitForReload(s.source)

	if e.Err != nil {
		s.bar.Pushf(s.now(), "Reload failed: %s", e.Err.Error())
		if s.bell != nil {
			s.bell.Ring(notify.ReasonReloadFailed, s.now())
		}
		return s, next
	}
	if s.build == nil || e.Deck == nil {
		return s, next
	}

	start := min(s.ctrl.Info().Current, e.Deck.Len())
	ctrl, err := s.build(e.Deck.Len(), start)
	if err != nil {
		s.bar.Pushf(s.now(), "Reload failed: %s", err.Error())
		return s, next
	}

	interval, running := s.ctrl.AutoPlay()
	s.ctrl.StopAutoPlay()
	if running {
		ctrl.StartAutoPlay(interval)
	}

	s.ctrl = ctrl
	s.deck = e.Deck
	s.renderer.Reset()
	s.layoutButtons()
	s.syncAutoPlay()
	s.bar.Pushf(s.now(), "Deck reloaded (%d slides)", e.Deck.Len())
	return s, tea.Batch(next, tea.SetWindowTitle(e.Deck.Title))
}

func (s *Show) toggleAutoPlay() {
	if !s.ctrl.StopAutoPlay() {
		s.ctrl.StartAutoPlay(s.interval)
	}
	s.syncAutoPlay()
}

// syncAutoPlay brings the view in line with the controller's auto-play
// state, whether the keyboard or the remote changed it.
func (s *Show) syncAutoPlay() {
	interval, running := s.ctrl.AutoPlay()
	if running == s.autoPlaying {
		return
	}
	s.autoPlaying = running

	if running {
		s.bar.Pushf(s.now(), "Auto-play started with %s interval", interval)
		if s.bell != nil {
			s.bell.Suspend()
		}
		return
	}
	s.bar.Pushf(s.now(), "Auto-play stopped")
	if s.bell != nil {
		s.bell.Resume()
	}
}

func (s Show) toggleFullscreen() (tea.Model, tea.Cmd) {
	s.fullscreen = !s.fullscreen
	if s.fullscreen {
		return s, tea.EnterAltScreen
	}
	return s, tea.ExitAltScreen
}

// layoutButtons places the click targets to match renderNavBar.
func (s Show) layoutButtons() {
	y := s.height - 1
	prevW := runewidth.StringWidth(prevLabel)
	counterW := runewidth.StringWidth(s.counterText(s.ctrl.Info()))
	nextW := runewidth.StringWidth(nextLabel)

	s.input.SetButtons(
		input.Zone{X: 0, Y: y, Width: prevW},
		input.Zone{X: prevW + counterW, Y: y, Width: nextW},
	)
}

// View renders the active slide and its chrome.
func (s Show) View() string {
	if s.width < minWidth || s.height < minHeight {
		return fmt.Sprintf("\n  Terminal too small (need %dx%d, got %dx%d)\n", minWidth, minHeight, s.width, s.height)
	}

	var b strings.Builder

	// Header
	b.WriteString(s.renderHeader())
	b.WriteString("\n")
	b.WriteString(subheaderStyle.Render(strings.Repeat("─", s.width)))
	b.WriteString("\n")

	// Slide
	bodyHeight := s.height - headerLines - footerLines
	b.WriteString(s.renderBody(bodyHeight))

	// Notification bar
	b.WriteString(s.renderNotificationBar())
	b.WriteString("\n")

	// Navigation bar
	b.WriteString(s.renderNavBar())

	return b.String()
}

func (s Show) renderHeader() string {
	title := s.deck.Title
	if s.deck.Author != "" {
		title += " · " + s.deck.Author
	}
	left := headerStyle.Render(truncate(title, s.width/2))

	right := ""
	if slide, ok := s.deck.Slide(s.ctrl.Info().Current); ok {
		right = slideTitleStyle.Render(truncate(slide.Title, s.width/3))
	}
	if interval, running := s.ctrl.AutoPlay(); running {
		right += " " + badgeStyle.Render(fmt.Sprintf("▶ auto %s", interval))
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return left + strings.Repeat(" ", gap) + right
}

func (s Show) renderBody(height int) string {
	var content string
	if s.help.ShowAll {
		content = "\n" + s.help.View(s.input.Keys())
	} else if slide, ok := s.deck.Slide(s.ctrl.Info().Current); ok {
		content = s.renderer.Render(slide, s.width-2)
	}

	content = clipLines(content, height)
	if content != "" {
		content += "\n"
	}
	return padLines(content, height)
}

func (s Show) renderNotificationBar() string {
	return notificationBarStyle.Render("  " + s.bar.Render(s.width-4, s.now()))
}

func (s Show) counterText(info slides.Info) string {
	return fmt.Sprintf("  %*d / %d  ", digits(info.Total), info.Current, info.Total)
}

func (s Show) renderNavBar() string {
	info := s.ctrl.Info()

	prev := navButtonStyle(!info.IsFirst).Render(prevLabel)
	counter := counterStyle.Render(s.counterText(info))
	next := navButtonStyle(!info.IsLast).Render(nextLabel)
	left := prev + counter + next

	right := ""
	if !s.help.ShowAll {
		right = s.help.View(s.input.Keys())
	}
	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + statusBarStyle.Render(right)
}
