package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/JPM1118/diapo/internal/autoplay"
	"github.com/JPM1118/diapo/internal/config"
	"github.com/JPM1118/diapo/internal/deck"
	"github.com/JPM1118/diapo/internal/input"
	"github.com/JPM1118/diapo/internal/notify"
	"github.com/JPM1118/diapo/internal/remote"
	"github.com/JPM1118/diapo/internal/render"
	"github.com/JPM1118/diapo/internal/slides"
	"github.com/JPM1118/diapo/internal/surface"
	"github.com/JPM1118/diapo/internal/tui"
	"github.com/JPM1118/diapo/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	autoPlayFlag time.Duration
	startFlag    int
	noAltScreen  bool
	watchFlag    bool
	remoteAddr   string
)

var showCmd = &cobra.Command{
	Use:   "show <deck.md>",
	Short: "Present a deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args[0])
	},
}

func init() {
	addShowFlags(showCmd)
	rootCmd.AddCommand(showCmd)
}

func addShowFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.DurationVarP(&autoPlayFlag, "autoplay", "a", 0, "advance automatically (optionally every `interval`, e.g. --autoplay=5s)")
	f.Lookup("autoplay").NoOptDefVal = "0s"
	f.IntVarP(&startFlag, "start", "s", 1, "slide to open on")
	f.BoolVar(&noAltScreen, "no-alt-screen", false, "present inline instead of on the alternate screen")
	f.BoolVarP(&watchFlag, "watch", "w", true, "reload the deck when the file changes")
	f.StringVar(&remoteAddr, "remote", "", "serve the remote clicker on `addr` (e.g. 127.0.0.1:7070)")
}

// showSettings is the merged result of flags, deck front matter, and config.
type showSettings struct {
	start     int
	autoPlay  bool
	interval  time.Duration
	theme     string
	altScreen bool
	watch     bool
	remote    string
}

// resolveSettings applies precedence: flag, then deck front matter, then
// config. Bad deck values are ignored with a warning; bad flag values are
// an error.
func resolveSettings(cmd *cobra.Command, d *deck.Deck) (showSettings, error) {
	flags := cmd.Flags()
	s := showSettings{
		start:     cfg.Presentation.StartSlide,
		autoPlay:  cfg.Presentation.AutoPlay,
		interval:  cfg.Presentation.AutoPlayInterval.Duration,
		theme:     cfg.Presentation.Theme,
		altScreen: cfg.Presentation.AltScreen,
		watch:     cfg.Watch.Enabled,
		remote:    cfg.Remote.Listen,
	}

	if d.Meta.Start > 0 {
		s.start = d.Meta.Start
	}
	if render.ValidTheme(d.Meta.Theme) {
		s.theme = d.Meta.Theme
	} else if d.Meta.Theme != "" {
		log.Warn("ignoring unknown deck theme", zap.String("theme", d.Meta.Theme))
	}
	interval, err := d.Meta.AutoPlayInterval()
	if err == nil && interval > 0 {
		err = config.ValidateAutoPlayInterval(interval)
	}
	if err != nil {
		log.Warn("ignoring deck autoplay", zap.Error(err))
	} else if interval > 0 {
		s.autoPlay = true
		s.interval = interval
	}

	if flags.Changed("start") {
		s.start = startFlag
	}
	if flags.Changed("autoplay") {
		s.autoPlay = true
		if autoPlayFlag > 0 {
			s.interval = autoPlayFlag
		}
	}
	if flags.Changed("no-alt-screen") {
		s.altScreen = !noAltScreen
	}
	if flags.Changed("watch") {
		s.watch = watchFlag
	}
	if flags.Changed("remote") {
		s.remote = remoteAddr
	}

	merged := cfg
	merged.Presentation.StartSlide = s.start
	merged.Presentation.AutoPlayInterval = config.Duration{Duration: s.interval}
	merged.Presentation.Theme = s.theme
	if err := merged.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func runShow(cmd *cobra.Command, path string) error {
	d, err := deck.Load(path)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, d)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surf := surface.New(16)
	sched := autoplay.NewTicker(ctx)

	var srv *remote.Server
	if settings.remote != "" {
		srv = remote.New(log.Named("remote"), settings.interval)
	}

	build := func(total, start int) (*slides.Controller, error) {
		c, err := slides.New(total,
			slides.WithScheduler(sched),
			slides.WithPresenter(surf),
			slides.WithHooks(surf.Hooks()),
			slides.WithLogger(log.Named("slides")),
			slides.WithStart(start),
			slides.WithDefaultInterval(settings.interval),
		)
		if err != nil {
			return nil, err
		}
		if srv != nil {
			srv.Attach(c)
		}
		return c, nil
	}

	ctrl, err := build(d.Len(), settings.start)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if settings.autoPlay {
		ctrl.StartAutoPlay(settings.interval)
	}

	if srv != nil {
		go func() {
			if err := srv.ListenAndServe(ctx, settings.remote); err != nil {
				log.Error("remote server stopped", zap.Error(err))
			}
		}()
	}

	bar := notify.NewBar(cfg.Notifications.MaxNotices)
	opts := []tui.Option{
		tui.WithEvents(surf.Events()),
		tui.WithBuilder(build),
		tui.WithRenderer(render.New(settings.theme)),
		tui.WithInput(input.NewAdapter(input.DefaultKeyMap(), cfg.Input.MinSwipeDistance)),
		tui.WithNotifyBar(bar),
		tui.WithLogger(log.Named("tui")),
		tui.WithAutoPlayInterval(settings.interval),
		tui.WithFullscreen(settings.altScreen),
	}

	if cfg.Notifications.TerminalBell {
		bell := notify.NewBell(cfg.Notifications.BellDebounce.Duration, cfg.Notifications.BellOn)
		opts = append(opts, tui.WithBell(bell))
	}

	if settings.watch {
		var w watch.Source
		fsw, err := watch.New(path, cfg.Watch.Debounce.Duration, log.Named("watch"))
		if err == nil {
			w = fsw
		} else {
			log.Warn("file notifications unavailable, polling instead", zap.Error(err))
			var poller *watch.Poller
			poller, err = watch.NewPoller(path, watch.DefaultPollInterval, log.Named("watch"))
			w = poller
		}
		if err != nil {
			log.Warn("live reload disabled", zap.Error(err))
			bar.Pushf(time.Now(), "Live reload disabled: %s", err.Error())
		} else {
			defer w.Close()
			w.Start(ctx)
			opts = append(opts, tui.WithReloads(w))
		}
	}

	if settings.remote != "" {
		bar.Pushf(time.Now(), "Remote clicker on http://%s", settings.remote)
	}

	programOpts := []tea.ProgramOption{tea.WithReportFocus()}
	if settings.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if cfg.Input.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	log.Info("presenting",
		zap.String("deck", d.Path),
		zap.Int("slides", d.Len()),
		zap.Int("start", ctrl.Info().Current),
		zap.Bool("autoplay", settings.autoPlay),
	)

	program := tea.NewProgram(tui.NewShow(d, ctrl, opts...), programOpts...)

	finalModel, err := program.Run()
	if m, ok := finalModel.(tui.Show); ok {
		m.Controller().StopAutoPlay()
	}
	cancel() // Stop timers, watcher, and remote server
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}
