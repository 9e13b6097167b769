// Package tabbar renders the open tabs as a single-line strip.
package tabbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/filterbox/internal/tabs"
	"github.com/Iron-Ham/filterbox/internal/tui/styles"
	"github.com/Iron-Ham/filterbox/internal/util"
)

// MaxTitleWidth caps a single tab label.
const MaxTitleWidth = 24

// Label returns the text shown for a tab: its icon glyph and title, falling
// back to the URI when the title is empty.
func Label(t tabs.Tab) string {
	title := t.Title
	if title == "" {
		title = t.URI
	}
	title = util.TruncateANSI(util.FirstLine(title), MaxTitleWidth)
	if glyph := styles.IconGlyph(t.IconName); glyph != "" {
		return glyph + " " + title
	}
	return title
}

// Render draws the strip for ts with the tab at active highlighted. When the
// strip is wider than width, tabs are dropped from the far side of the active
// tab and a "+N" marker shows how many are hidden. width <= 0 disables the
// limit.
func Render(ts []tabs.Tab, active, width int) string {
	if len(ts) == 0 {
		return styles.TabBar.Render(styles.Muted.Render("No open tabs"))
	}
	active = max(0, min(active, len(ts)-1))

	rendered := make([]string, len(ts))
	for i, t := range ts {
		style := styles.TabInactive
		if i == active {
			style = styles.TabActive
		}
		rendered[i] = style.Render(Label(t))
	}

	lo, hi := visibleRange(rendered, active, width)
	parts := rendered[lo:hi]
	if hidden := len(ts) - (hi - lo); hidden > 0 {
		parts = append(parts, styles.Muted.Render(fmt.Sprintf(" +%d", hidden)))
	}
	return styles.TabBar.Render(strings.Join(parts, ""))
}

// visibleRange grows a window around active, alternating right then left,
// while it fits in width. A marker column is reserved whenever tabs are
// hidden.
func visibleRange(rendered []string, active, width int) (int, int) {
	if width <= 0 {
		return 0, len(rendered)
	}
	const markerWidth = 5

	lo, hi := active, active+1
	used := lipgloss.Width(rendered[active])
	fits := func(i int) bool {
		reserve := markerWidth
		if hi-lo+1 == len(rendered) {
			reserve = 0
		}
		return used+lipgloss.Width(rendered[i])+reserve <= width
	}

	for grew := true; grew; {
		grew = false
		if hi < len(rendered) && fits(hi) {
			used += lipgloss.Width(rendered[hi])
			hi++
			grew = true
		}
		if lo > 0 && fits(lo-1) {
			lo--
			used += lipgloss.Width(rendered[lo])
			grew = true
		}
	}
	return lo, hi
}
