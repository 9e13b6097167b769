// Package filterbox is the interactive filter box: a search field over an
// async data source, with a checkable list of candidates that commits to a
// filter.
package filterbox

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/filter"
	"github.com/Iron-Ham/filterbox/internal/listdata"
	"github.com/Iron-Ham/filterbox/internal/logging"
	"github.com/Iron-Ham/filterbox/internal/tui/styles"
	"github.com/Iron-Ham/filterbox/internal/util"
)

// DefaultMaxVisible is how many rows the list shows when Options.MaxVisible
// is zero.
const DefaultMaxVisible = 10

const defaultWidth = 60

// Options configures a Model.
type Options struct {
	Title       string
	Placeholder string
	// MaxVisible caps the rows rendered at once. Zero uses DefaultMaxVisible.
	MaxVisible int
	// SearchDebounce delays a search after the last keystroke. Zero searches
	// on every keystroke.
	SearchDebounce time.Duration
	// Context bounds every search. Nil uses context.Background.
	Context context.Context
	Logger  *logging.Logger
}

// searchTickMsg fires once the debounce delay for a keystroke has elapsed.
type searchTickMsg struct {
	seq  uint64
	text string
}

// searchResultMsg reports a finished search. The rows themselves live in the
// selector.
type searchResultMsg struct {
	seq uint64
	err error
}

// Model is the bubbletea model for a filter box over a selector.
type Model[S any, V comparable] struct {
	selector *listdata.Selector[S, V]
	opts     Options
	ctx      context.Context
	logger   *logging.Logger

	input  textinput.Model
	rows   []listdata.Item[S, V]
	cursor int
	offset int
	width  int

	seq       uint64
	searching bool
	err       error

	committed bool
	quitting  bool
	result    *filter.Filter[V]
}

// New creates a filter box over selector. The first Init runs an empty
// search so the list starts populated.
func New[S any, V comparable](selector *listdata.Selector[S, V], opts Options) Model[S, V] {
	ti := textinput.New()
	ti.Prompt = styles.SearchPrompt.Render("/ ")
	ti.Placeholder = opts.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Type to search"
	}
	ti.CharLimit = 200
	ti.Focus()

	if opts.MaxVisible <= 0 {
		opts.MaxVisible = DefaultMaxVisible
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return Model[S, V]{
		selector:  selector,
		opts:      opts,
		ctx:       ctx,
		logger:    opts.Logger.WithComponent("filterbox").WithSource(selector.Source().Name()),
		input:     ti,
		rows:      selector.Rows(),
		width:     defaultWidth,
		seq:       1,
		searching: true,
	}
}

func (m Model[S, V]) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.searchCmd(m.seq, m.input.Value()))
}

func (m Model[S, V]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case searchTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.searchCmd(msg.seq, msg.text)

	case searchResultMsg:
		return m.applyResult(msg), nil

	case tea.KeyMsg:
		return m.handleKeypress(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model[S, V]) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.selector.Cancel()
		m.quitting = true
		return m, tea.Quit

	case "enter":
		m.selector.Cancel()
		m.result = m.selector.BuildFilter()
		m.committed = true
		m.quitting = true
		return m, tea.Quit

	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil

	case "tab":
		if row, ok := m.currentRow(); ok && !row.Disabled() {
			m.selector.Toggle(row.Value())
		}
		return m, nil

	case "ctrl+a":
		m.selector.SelectAll()
		return m, nil

	case "ctrl+x":
		m.selector.Clear()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != before {
		m.seq++
		m.searching = true
		return m, tea.Batch(cmd, m.scheduleSearch(m.seq, text))
	}
	return m, cmd
}

// scheduleSearch debounces keystrokes: only the tick carrying the latest
// sequence number turns into a search.
func (m Model[S, V]) scheduleSearch(seq uint64, text string) tea.Cmd {
	if m.opts.SearchDebounce <= 0 {
		return m.searchCmd(seq, text)
	}
	return tea.Tick(m.opts.SearchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, text: text}
	})
}

func (m Model[S, V]) searchCmd(seq uint64, text string) tea.Cmd {
	selector, ctx := m.selector, m.ctx
	return func() tea.Msg {
		_, err := selector.Search(ctx, text, nil)
		return searchResultMsg{seq: seq, err: err}
	}
}

func (m Model[S, V]) applyResult(msg searchResultMsg) Model[S, V] {
	if msg.seq != m.seq {
		return m
	}
	m.searching = false
	if msg.err != nil {
		if !errors.IsCanceled(msg.err) {
			m.logSearchError(msg.err)
			m.err = msg.err
		}
		return m
	}
	m.err = nil
	m.rows = m.selector.Rows()
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.clampOffset()
	return m
}

func (m *Model[S, V]) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.rows)) % len(m.rows)
	m.clampOffset()
}

// clampOffset scrolls the window so the cursor row is visible.
func (m *Model[S, V]) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.opts.MaxVisible {
		m.offset = m.cursor - m.opts.MaxVisible + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-m.opts.MaxVisible))
}

func (m Model[S, V]) currentRow() (listdata.Item[S, V], bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return listdata.Item[S, V]{}, false
	}
	return m.rows[m.cursor], true
}

// Result returns the committed filter and whether the user committed at all.
// A committed nil filter means "no filter".
func (m Model[S, V]) Result() (*filter.Filter[V], bool) {
	return m.result, m.committed
}

func (m Model[S, V]) logSearchError(err error) {
	severity := errors.GetSeverity(err)
	args := []any{"text", m.input.Value(), "severity", severity.String(), "error", err.Error()}
	if severity >= errors.SeverityError {
		m.logger.Error("search failed", args...)
		return
	}
	m.logger.Warn("search failed", args...)
}

// errorText shows user-facing errors as is. Anything else only goes to the
// log.
func errorText(err error) string {
	if errors.IsUserFacing(err) {
		return err.Error()
	}
	return "search failed, see the log for details"
}

// Err returns the error from the most recent search, if any.
func (m Model[S, V]) Err() error {
	return m.err
}

func (m Model[S, V]) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(styles.Title.Render(m.opts.Title))
		b.WriteString("\n")
	}

	b.WriteString(styles.SearchBar.Render(m.input.View()))
	b.WriteString(styles.SearchInfo.Render(m.info()))
	b.WriteString("\n")

	b.WriteString(m.renderRows())

	if row, ok := m.currentRow(); ok && row.Tooltip() != "" {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(util.TruncateANSI(util.FirstLine(row.Tooltip()), m.width)))
	}
	if summary := m.summary(); summary != "" {
		b.WriteString("\n")
		b.WriteString(styles.FilterSummary.Render(util.TruncateANSI(summary, m.width)))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + util.TruncateANSI(errorText(m.err), m.width)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model[S, V]) info() string {
	if m.searching {
		return "searching..."
	}
	return fmt.Sprintf("%d items, %d selected", len(m.rows), len(m.selector.Selected()))
}

func (m Model[S, V]) summary() string {
	if f := m.selector.BuildFilter(); f != nil {
		return f.Description()
	}
	return ""
}

func (m Model[S, V]) renderRows() string {
	if len(m.rows) == 0 {
		if m.searching {
			return styles.DropdownContainer.Render(styles.Muted.Render("Loading..."))
		}
		return styles.DropdownContainer.Render(styles.Muted.Render("No matches"))
	}

	end := min(m.offset+m.opts.MaxVisible, len(m.rows))
	lines := make([]string, 0, end-m.offset+2)
	if m.offset > 0 {
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("  ↑ %d more", m.offset)))
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor))
	}
	if rest := len(m.rows) - end; rest > 0 {
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("  ↓ %d more", rest)))
	}
	return styles.DropdownContainer.Render(strings.Join(lines, "\n"))
}

func (m Model[S, V]) renderRow(row listdata.Item[S, V], atCursor bool) string {
	prefix := "  "
	if atCursor {
		prefix = "> "
	}
	check := styles.Checkbox(m.selector.IsSelected(row.Value()))
	icon := styles.IconGlyph(row.IconName())
	if icon != "" {
		icon += " "
	}

	// Room for the border, padding, prefix and checkbox.
	textWidth := max(m.width-14-len([]rune(icon)), 8)
	text := util.TruncateANSI(util.FirstLine(row.Text()), textWidth)

	style := styles.DropdownItem
	switch {
	case row.Disabled():
		style = styles.DropdownItemDisabled
	case atCursor:
		style = styles.DropdownItemSelected
	}
	return prefix + check + style.Render(icon+text)
}

func (m Model[S, V]) renderHelp() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "move"},
		{"tab", "toggle"},
		{"ctrl+a", "all"},
		{"ctrl+x", "clear"},
		{"enter", "apply"},
		{"esc", "cancel"},
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, styles.HelpKey.Render(k.key)+" "+k.desc)
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}

// Run shows a filter box over selector until the user commits or cancels.
// It returns the committed filter and whether the user committed. The UI is
// drawn on stderr so stdout stays free for the result.
func Run[S any, V comparable](ctx context.Context, selector *listdata.Selector[S, V], opts Options) (*filter.Filter[V], bool, error) {
	if opts.Context == nil {
		opts.Context = ctx
	}
	p := tea.NewProgram(New(selector, opts), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return nil, false, errors.Wrap(err, "filter box")
	}
	f, ok := final.(Model[S, V]).Result()
	return f, ok, nil
}
