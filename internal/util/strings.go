// Package util provides small terminal text helpers shared by the TUI packages.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text. It occupies a single column.
const Ellipsis = "…"

// TruncateANSI truncates s to maxWidth visual columns, ending with Ellipsis
// when anything was cut. ANSI escape codes and wide characters are handled,
// so styled row text can be passed directly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return Ellipsis
	}
	// ansi.Truncate counts the tail toward the final width.
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// Fit truncates or right-pads s so it occupies exactly width columns.
func Fit(s string, width int) string {
	s = TruncateANSI(s, width)
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// FirstLine returns s up to its first line break. Tooltips and item text
// can be multi-line; list rows render one line each.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
