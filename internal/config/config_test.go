package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Presentation.AutoPlayInterval.Duration != 10*time.Second {
		t.Errorf("default autoplay_interval = %s, want 10s", cfg.Presentation.AutoPlayInterval)
	}
	if cfg.Presentation.AutoPlay {
		t.Error("default autoplay should be off")
	}
	if cfg.Presentation.StartSlide != 1 {
		t.Errorf("default start_slide = %d, want 1", cfg.Presentation.StartSlide)
	}
	if cfg.Input.MinSwipeDistance != 5 {
		t.Errorf("default min_swipe_distance = %d, want 5", cfg.Input.MinSwipeDistance)
	}
	if !cfg.Watch.Enabled {
		t.Error("default watch should be enabled")
	}
	if !cfg.Notifications.TerminalBell {
		t.Error("default terminal_bell should be true")
	}
	if cfg.Remote.Listen != "" {
		t.Errorf("remote should be off by default, got %q", cfg.Remote.Listen)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/config.yml")
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if cfg.Presentation.AutoPlayInterval.Duration != 10*time.Second {
		t.Errorf("missing file should use defaults, got autoplay_interval = %s", cfg.Presentation.AutoPlayInterval)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	path := writeConfig(t, `
presentation:
  autoplay: true
  autoplay_interval: "30s"
  start_slide: 3
  theme: light
  alt_screen: false
input:
  min_swipe_distance: 8
  mouse: false
watch:
  enabled: false
  debounce: "500ms"
notifications:
  terminal_bell: false
  bell_debounce: "5s"
  bell_on:
    - "boundary"
  max_notices: 5
remote:
  listen: "127.0.0.1:7070"
log:
  file: "/tmp/diapo.log"
  level: debug
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("valid file should not error, got: %v", err)
	}
	if !cfg.Presentation.AutoPlay {
		t.Error("autoplay should be true")
	}
	if cfg.Presentation.AutoPlayInterval.Duration != 30*time.Second {
		t.Errorf("autoplay_interval = %s, want 30s", cfg.Presentation.AutoPlayInterval)
	}
	if cfg.Presentation.StartSlide != 3 {
		t.Errorf("start_slide = %d, want 3", cfg.Presentation.StartSlide)
	}
	if cfg.Presentation.Theme != "light" || cfg.Presentation.AltScreen {
		t.Errorf("theme/alt_screen = %q/%v, want light/false", cfg.Presentation.Theme, cfg.Presentation.AltScreen)
	}
	if cfg.Input.MinSwipeDistance != 8 || cfg.Input.Mouse {
		t.Errorf("input = %+v, want 8/false", cfg.Input)
	}
	if cfg.Watch.Enabled || cfg.Watch.Debounce.Duration != 500*time.Millisecond {
		t.Errorf("watch = %+v, want disabled/500ms", cfg.Watch)
	}
	if cfg.Notifications.TerminalBell {
		t.Error("terminal_bell should be false")
	}
	if len(cfg.Notifications.BellOn) != 1 || cfg.Notifications.BellOn[0] != "boundary" {
		t.Errorf("bell_on = %v, want [boundary]", cfg.Notifications.BellOn)
	}
	if cfg.Remote.Listen != "127.0.0.1:7070" {
		t.Errorf("remote.listen = %q", cfg.Remote.Listen)
	}
	if cfg.Log.File != "/tmp/diapo.log" || cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadFrom_PartialFile(t *testing.T) {
	path := writeConfig(t, `
presentation:
  autoplay_interval: "20s"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("partial file should not error, got: %v", err)
	}
	if cfg.Presentation.AutoPlayInterval.Duration != 20*time.Second {
		t.Errorf("autoplay_interval = %s, want 20s", cfg.Presentation.AutoPlayInterval)
	}
	// Partial file: other fields keep defaults
	if cfg.Presentation.Theme != "dark" {
		t.Errorf("theme should be default dark, got %q", cfg.Presentation.Theme)
	}
	if cfg.Input.MinSwipeDistance != 5 {
		t.Errorf("min_swipe_distance should be default 5, got %d", cfg.Input.MinSwipeDistance)
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"interval too short": "presentation:\n  autoplay_interval: \"100ms\"\n",
		"interval too long":  "presentation:\n  autoplay_interval: \"2h\"\n",
		"start slide zero":   "presentation:\n  start_slide: 0\n",
		"unknown theme":      "presentation:\n  theme: neon\n",
		"swipe zero":         "input:\n  min_swipe_distance: 0\n",
		"debounce too long":  "watch:\n  debounce: \"10s\"\n",
		"no notices":         "notifications:\n  max_notices: 0\n",
		"bad log level":      "log:\n  level: loud\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, data))
			if err == nil {
				t.Fatalf("%s should fail validation", name)
			}
		})
	}
}

func TestValidateAutoPlayInterval(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want bool
	}{
		{999 * time.Millisecond, false},
		{MinAutoPlayInterval, true},
		{10 * time.Second, true},
		{MaxAutoPlayInterval, true},
		{MaxAutoPlayInterval + time.Second, false},
	}
	for _, tt := range tests {
		err := ValidateAutoPlayInterval(tt.d)
		if (err == nil) != tt.want {
			t.Errorf("ValidateAutoPlayInterval(%s) error = %v, want ok %v", tt.d, err, tt.want)
		}
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "{{not yaml"))
	if err == nil {
		t.Fatal("malformed YAML should return error")
	}
}

func TestLoadFrom_BadDuration(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "presentation:\n  autoplay_interval: \"soon\"\n"))
	if err == nil {
		t.Fatal("unparseable duration should return error")
	}
}

func TestLoadFrom_UnknownBellReasonFiltered(t *testing.T) {
	path := writeConfig(t, `
notifications:
  bell_on:
    - "boundary"
    - "sunrise"
    - "reload-failed"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unknown reasons should be filtered, not error: %v", err)
	}
	if len(cfg.Notifications.BellOn) != 2 {
		t.Errorf("should have 2 known reasons, got %d: %v", len(cfg.Notifications.BellOn), cfg.Notifications.BellOn)
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	v, err := Duration{90 * time.Second}.MarshalYAML()
	if err != nil {
		t.Fatal(err)
	}
	if v != "1m30s" {
		t.Errorf("MarshalYAML() = %v, want 1m30s", v)
	}
}

func TestPath_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := Path()
	want := "/custom/config/diapo/config.yml"
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}
