package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JPM1118/diapo/internal/notify"
	"github.com/JPM1118/diapo/internal/render"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for diapo.
type Config struct {
	Presentation  PresentationConfig `yaml:"presentation"`
	Input         InputConfig        `yaml:"input"`
	Watch         WatchConfig        `yaml:"watch"`
	Notifications NotificationConfig `yaml:"notifications"`
	Remote        RemoteConfig       `yaml:"remote"`
	Log           LogConfig          `yaml:"log"`
}

// PresentationConfig controls how a deck is shown.
type PresentationConfig struct {
	AutoPlay         bool     `yaml:"autoplay"`
	AutoPlayInterval Duration `yaml:"autoplay_interval"`
	StartSlide       int      `yaml:"start_slide"`
	Theme            string   `yaml:"theme"`
	AltScreen        bool     `yaml:"alt_screen"`
}

// InputConfig controls gesture recognition.
type InputConfig struct {
	MinSwipeDistance int  `yaml:"min_swipe_distance"`
	Mouse            bool `yaml:"mouse"`
}

// WatchConfig controls live reload of the deck file.
type WatchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Debounce Duration `yaml:"debounce"`
}

// NotificationConfig controls how the presenter is notified.
type NotificationConfig struct {
	TerminalBell bool     `yaml:"terminal_bell"`
	BellDebounce Duration `yaml:"bell_debounce"`
	BellOn       []string `yaml:"bell_on"`
	MaxNotices   int      `yaml:"max_notices"`
}

// RemoteConfig controls the remote clicker server. Empty Listen disables it.
type RemoteConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig controls the log file. Empty File disables logging.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Duration wraps time.Duration for YAML unmarshalling from strings like "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Presentation: PresentationConfig{
			AutoPlay:         false,
			AutoPlayInterval: Duration{10 * time.Second},
			StartSlide:       1,
			Theme:            "dark",
			AltScreen:        true,
		},
		Input: InputConfig{
			MinSwipeDistance: 5,
			Mouse:            true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration{200 * time.Millisecond},
		},
		Notifications: NotificationConfig{
			TerminalBell: true,
			BellDebounce: Duration{2 * time.Second},
			BellOn:       []string{notify.ReasonBoundary, notify.ReasonReloadFailed},
			MaxNotices:   20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file and merges with defaults.
// A missing file is not an error; defaults are used silently.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from a specific path.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("config validation: %w", err)
	}

	cfg.Notifications.BellOn = filterKnownReasons(cfg.Notifications.BellOn)

	return cfg, nil
}

// Bounds for any auto-play interval, wherever it comes from.
const (
	MinAutoPlayInterval = time.Second
	MaxAutoPlayInterval = time.Hour
)

// ValidateAutoPlayInterval checks d against the auto-play bounds.
func ValidateAutoPlayInterval(d time.Duration) error {
	if d < MinAutoPlayInterval || d > MaxAutoPlayInterval {
		return fmt.Errorf("autoplay_interval must be between %s and %s, got %s",
			MinAutoPlayInterval, MaxAutoPlayInterval, d)
	}
	return nil
}

// Validate checks value ranges. The show command validates the config
// again after applying deck and flag overrides.
func (c Config) Validate() error {
	if err := ValidateAutoPlayInterval(c.Presentation.AutoPlayInterval.Duration); err != nil {
		return err
	}

	if c.Presentation.StartSlide < 1 {
		return fmt.Errorf("start_slide must be at least 1, got %d", c.Presentation.StartSlide)
	}

	if !render.ValidTheme(c.Presentation.Theme) {
		return fmt.Errorf("theme must be one of %v, got %q", render.Themes, c.Presentation.Theme)
	}

	sd := c.Input.MinSwipeDistance
	if sd < 1 || sd > 100 {
		return fmt.Errorf("min_swipe_distance must be between 1 and 100, got %d", sd)
	}

	wd := c.Watch.Debounce.Duration
	if wd < 10*time.Millisecond || wd > 5*time.Second {
		return fmt.Errorf("watch debounce must be between 10ms and 5s, got %s", wd)
	}

	if c.Notifications.MaxNotices < 1 {
		return fmt.Errorf("max_notices must be at least 1, got %d", c.Notifications.MaxNotices)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

func filterKnownReasons(reasons []string) []string {
	valid := make([]string, 0, len(reasons))
	for _, r := range reasons {
		switch r {
		case notify.ReasonBoundary, notify.ReasonReloadFailed:
			valid = append(valid, r)
		}
	}
	return valid
}

// Path returns the config file location under XDG_CONFIG_HOME.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "diapo", "config.yml")
}
