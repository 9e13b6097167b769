package tabbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/filterbox/internal/tabs"
)

func sampleTabs(n int) []tabs.Tab {
	ts := make([]tabs.Tab, n)
	for i := range ts {
		ts[i] = tabs.Tab{URI: "/t/" + string(rune('a'+i)), Title: "Tab " + string(rune('A'+i))}
	}
	return ts
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		tab      tabs.Tab
		expected string
	}{
		{"title", tabs.Tab{URI: "/x", Title: "Orders"}, "Orders"},
		{"falls back to URI", tabs.Tab{URI: "/customers/7"}, "/customers/7"},
		{"icon glyph", tabs.Tab{URI: "/x", Title: "Stars", IconName: "star"}, "★ Stars"},
		{"multi-line title", tabs.Tab{URI: "/x", Title: "First\nSecond"}, "First"},
		{"long title truncated", tabs.Tab{URI: "/x", Title: strings.Repeat("a", 30)}, strings.Repeat("a", MaxTitleWidth-1) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.tab); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(nil, 0, 80); !strings.Contains(got, "No open tabs") {
		t.Errorf("Render(nil) = %q, want the empty message", got)
	}
}

func TestRender_AllFit(t *testing.T) {
	got := Render(sampleTabs(3), 1, 0)
	for _, want := range []string{"Tab A", "Tab B", "Tab C"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, "+") {
		t.Errorf("Render() should not show a hidden marker: %q", got)
	}
}

func TestRender_Narrow(t *testing.T) {
	ts := sampleTabs(6)
	got := Render(ts, 4, 30)

	if !strings.Contains(got, "Tab E") {
		t.Errorf("Render() must keep the active tab: %q", got)
	}
	if !strings.Contains(got, "+") {
		t.Errorf("Render() should show how many tabs are hidden: %q", got)
	}
	firstLine := strings.Split(got, "\n")[0]
	if w := lipgloss.Width(firstLine); w > 30 {
		t.Errorf("strip width = %d, want <= 30", w)
	}
}

func TestRender_ActiveClamped(t *testing.T) {
	got := Render(sampleTabs(2), 9, 0)
	if !strings.Contains(got, "Tab B") {
		t.Errorf("Render() = %q, want the last tab active", got)
	}
}
