package styles

import (
	"strings"
	"testing"
)

func TestIconGlyph(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", ""},
		{"check", "✓"},
		{"cross", "✗"},
		{"null", "∅"},
		{"star", "★"},
		{"link", "↗"},
		{"no-such-icon", " "}, // Should fall back to a blank
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IconGlyph(tt.name); got != tt.expected {
				t.Errorf("IconGlyph(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestCheckbox(t *testing.T) {
	if got := Checkbox(true); !strings.Contains(got, "[x]") {
		t.Errorf("Checkbox(true) = %q, want it to contain [x]", got)
	}
	if got := Checkbox(false); !strings.Contains(got, "[ ]") {
		t.Errorf("Checkbox(false) = %q, want it to contain [ ]", got)
	}
}
