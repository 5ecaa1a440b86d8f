package cmd

import (
	"testing"
	"time"

	"github.com/JPM1118/diapo/internal/config"
	"github.com/JPM1118/diapo/internal/deck"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, cmd *cobra.Command, d *deck.Deck) showSettings {
	t.Helper()
	s, err := resolveSettings(cmd, d)
	require.NoError(t, err)
	return s
}

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "show"}
	addShowFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func testDeck(t *testing.T, src string) *deck.Deck {
	t.Helper()
	d, err := deck.Parse("talk.md", []byte(src))
	require.NoError(t, err)
	return d
}

func TestResolveSettings_ConfigDefaults(t *testing.T) {
	cfg = config.Defaults()
	s := resolve(t, testCommand(t), testDeck(t, "# One\n---\n# Two\n"))

	assert.Equal(t, 1, s.start)
	assert.False(t, s.autoPlay)
	assert.Equal(t, 10*time.Second, s.interval)
	assert.Equal(t, "dark", s.theme)
	assert.True(t, s.altScreen)
	assert.True(t, s.watch)
	assert.Empty(t, s.remote)
}

func TestResolveSettings_DeckOverridesConfig(t *testing.T) {
	cfg = config.Defaults()
	d := testDeck(t, "---\nautoplay: 4s\nstart: 2\ntheme: light\n---\n# One\n---\n# Two\n")

	s := resolve(t, testCommand(t), d)
	assert.Equal(t, 2, s.start)
	assert.True(t, s.autoPlay)
	assert.Equal(t, 4*time.Second, s.interval)
	assert.Equal(t, "light", s.theme)
}

func TestResolveSettings_FlagsOverrideDeck(t *testing.T) {
	cfg = config.Defaults()
	d := testDeck(t, "---\nautoplay: 4s\nstart: 2\n---\n# One\n---\n# Two\n---\n# Three\n")

	s := resolve(t, testCommand(t,
		"--start", "3",
		"--autoplay=7s",
		"--no-alt-screen",
		"--watch=false",
		"--remote", "127.0.0.1:7070",
	), d)

	assert.Equal(t, 3, s.start)
	assert.True(t, s.autoPlay)
	assert.Equal(t, 7*time.Second, s.interval)
	assert.False(t, s.altScreen)
	assert.False(t, s.watch)
	assert.Equal(t, "127.0.0.1:7070", s.remote)
}

func TestResolveSettings_BareAutoPlayFlagKeepsInterval(t *testing.T) {
	cfg = config.Defaults()
	cfg.Presentation.AutoPlayInterval = config.Duration{Duration: 20 * time.Second}

	s := resolve(t, testCommand(t, "--autoplay"), testDeck(t, "# One\n"))
	assert.True(t, s.autoPlay)
	assert.Equal(t, 20*time.Second, s.interval)
}

func TestResolveSettings_IgnoresBadDeckValues(t *testing.T) {
	cfg = config.Defaults()
	d := testDeck(t, "---\nautoplay: soon\ntheme: neon\n---\n# One\n")

	s := resolve(t, testCommand(t), d)
	assert.False(t, s.autoPlay)
	assert.Equal(t, "dark", s.theme)
}

func TestResolveSettings_DeckIntervalOutOfRangeIgnored(t *testing.T) {
	cfg = config.Defaults()
	d := testDeck(t, "---\nautoplay: 100ms\n---\n# One\n")

	s := resolve(t, testCommand(t), d)
	assert.False(t, s.autoPlay)
	assert.Equal(t, 10*time.Second, s.interval)
}

func TestResolveSettings_BadFlagsRejected(t *testing.T) {
	tests := map[string][]string{
		"interval below floor": {"--autoplay=100ms"},
		"interval above cap":   {"--autoplay=2h"},
		"start zero":           {"--start", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cfg = config.Defaults()
			_, err := resolveSettings(testCommand(t, args...), testDeck(t, "# One\n"))
			assert.Error(t, err)
		})
	}
}
