package notify

import (
	"strings"
	"testing"
	"time"
)

func TestBar_PushAndVisible(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Push(Notification{Text: "a", Timestamp: now})
	b.Push(Notification{Text: "b", Timestamp: now})
	b.Push(Notification{Text: "c", Timestamp: now})

	visible := b.Visible()
	if len(visible) != 2 {
		t.Fatalf("Visible() = %d items, want 2", len(visible))
	}
	if visible[0].Text != "b" {
		t.Errorf("visible[0].Text = %q, want b", visible[0].Text)
	}
	if visible[1].Text != "c" {
		t.Errorf("visible[1].Text = %q, want c", visible[1].Text)
	}
}

func TestBar_VisibleWithOneItem(t *testing.T) {
	b := NewBar(20)
	b.Push(Notification{Text: "only"})

	visible := b.Visible()
	if len(visible) != 1 {
		t.Fatalf("Visible() = %d items, want 1", len(visible))
	}
}

func TestBar_VisibleEmpty(t *testing.T) {
	b := NewBar(20)
	if len(b.Visible()) != 0 {
		t.Error("empty bar should have no visible items")
	}
}

func TestBar_MaxBuffer(t *testing.T) {
	b := NewBar(3)
	now := time.Now()

	for i := 0; i < 10; i++ {
		b.Push(Notification{Text: string(rune('a' + i)), Timestamp: now})
	}

	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (max buffer)", b.Len())
	}

	visible := b.Visible()
	// Should be the last 2 of the last 3
	if visible[0].Text != "i" {
		t.Errorf("visible[0] = %q, want i", visible[0].Text)
	}
	if visible[1].Text != "j" {
		t.Errorf("visible[1] = %q, want j", visible[1].Text)
	}
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(20)
	b.Pushf(time.Now(), "deck reloaded (%d slides)", 4)
	b.Pushf(time.Now(), "auto-play stopped")

	b.Clear()

	if b.Len() != 0 {
		t.Errorf("after clear: Len() = %d, want 0", b.Len())
	}
}

func TestBar_Render(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Pushf(now.Add(-2*time.Minute), "Auto-play started (%s)", 10*time.Second)

	result := b.Render(80, now)
	if !strings.Contains(result, "Auto-play started (10s)") {
		t.Errorf("render should contain text, got: %q", result)
	}
	if !strings.Contains(result, "2m ago") {
		t.Errorf("render should contain relative time, got: %q", result)
	}
}

func TestBar_RenderEmpty(t *testing.T) {
	b := NewBar(20)
	if b.Render(80, time.Now()) != "" {
		t.Error("empty bar should render empty string")
	}
}

func TestBar_RenderTruncation(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Push(Notification{Text: "a fairly long notification text", Timestamp: now})
	b.Push(Notification{Text: "another long notification text", Timestamp: now})

	result := b.Render(30, now)
	runes := []rune(result)
	if len(runes) > 30 {
		t.Errorf("render should be truncated to 30 runes, got %d: %q", len(runes), result)
	}
	if b.Render(0, now) != "" {
		t.Error("zero width should render empty string")
	}
}
