// Package config is the interactive editor behind "filterbox config".
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/filterbox/internal/config"
	"github.com/Iron-Ham/filterbox/internal/tui/styles"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string   // "string", "bool", "int", "select"
	Options     []string // For select type
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	categories     []Category
	categoryIndex  int
	itemIndex      int
	width          int
	editing        bool
	textInput      textinput.Model
	selectIndex    int // For select-type options
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
}

// Categories returns the editable settings grouped by config section.
func Categories() []Category {
	return []Category{
		{
			Name: "List Data",
			Items: []ConfigItem{
				{
					Key:         "listdata.cache_size",
					Label:       "Cache Size",
					Description: "Resolved items each data source keeps resident",
					Type:        "int",
				},
				{
					Key:         "listdata.search_debounce_ms",
					Label:       "Search Debounce (ms)",
					Description: "Delay after the last keystroke before searching (0 = immediately)",
					Type:        "int",
				},
			},
		},
		{
			Name: "Tabs",
			Items: []ConfigItem{
				{
					Key:         "tabs.saving_mode",
					Label:       "Saving Mode",
					Description: "Where open tabs are persisted",
					Type:        "select",
					Options:     config.ValidSavingModes(),
				},
				{
					Key:         "tabs.debounce_ms",
					Label:       "Save Debounce (ms)",
					Description: "How long autosave waits for further changes",
					Type:        "int",
				},
				{
					Key:         "tabs.remote_url",
					Label:       "Remote URL",
					Description: "Base URL of the tab service (remote mode)",
					Type:        "string",
				},
				{
					Key:         "tabs.timeout_seconds",
					Label:       "Remote Timeout (s)",
					Description: "Bound on each remote request",
					Type:        "int",
				},
				{
					Key:         "tabs.store_dir",
					Label:       "Store Directory",
					Description: "Local store root (empty = config directory)",
					Type:        "string",
				},
				{
					Key:         "tabs.application",
					Label:       "Application",
					Description: "Scopes the local store",
					Type:        "string",
				},
				{
					Key:         "tabs.user",
					Label:       "User",
					Description: "Scopes the local store (empty = $USER)",
					Type:        "string",
				},
			},
		},
		{
			Name: "TUI",
			Items: []ConfigItem{
				{
					Key:         "tui.max_visible_items",
					Label:       "Max Visible Items",
					Description: "Rows the filter box list shows at once",
					Type:        "int",
				},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{
					Key:         "logging.enabled",
					Label:       "Enabled",
					Description: "Write JSON logs to filterbox.log",
					Type:        "bool",
				},
				{
					Key:         "logging.level",
					Label:       "Level",
					Description: "Minimum level written to the log",
					Type:        "select",
					Options:     config.ValidLogLevels(),
				},
				{
					Key:         "logging.dir",
					Label:       "Directory",
					Description: "Directory holding filterbox.log (empty = config directory)",
					Type:        "string",
				},
			},
		},
		{
			Name: "Metrics",
			Items: []ConfigItem{
				{
					Key:         "metrics.enabled",
					Label:       "Enabled",
					Description: "Serve Prometheus metrics while a command runs",
					Type:        "bool",
				},
				{
					Key:         "metrics.address",
					Label:       "Address",
					Description: "host:port the metrics endpoint listens on",
					Type:        "string",
				},
			},
		},
	}
}

// Lookup finds the editable item for key.
func Lookup(key string) (ConfigItem, bool) {
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			if item.Key == key {
				return item, true
			}
		}
	}
	return ConfigItem{}, false
}

// New creates a new config model
func New() Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		categories: Categories(),
		textInput:  ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// Clear messages on any key
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
			m.itemIndex = 0

		case "enter", " ":
			item := m.currentItem()
			switch item.Type {
			case "bool":
				m.apply(item, !viper.GetBool(item.Key))
			case "select":
				m.editing = true
				m.selectIndex = m.getCurrentSelectIndex()
			default:
				m.editing = true
				m.textInput.SetValue(m.getCurrentValue())
				m.textInput.Focus()
			}

		case "r":
			m.resetCurrentToDefault()
		}
	}

	return m, nil
}

func (m *Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return *m, nil

	case "enter":
		if item.Type == "select" {
			m.apply(item, item.Options[m.selectIndex])
			m.editing = false
			return *m, nil
		}
		value, err := ParseValue(item, m.textInput.Value())
		if err != nil {
			m.errorMsg = err.Error()
			return *m, nil
		}
		if m.apply(item, value) {
			m.editing = false
			m.textInput.SetValue("")
		}
		return *m, nil

	case "up", "k":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex - 1 + len(item.Options)) % len(item.Options)
			return *m, nil
		}

	case "down", "j":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex + 1) % len(item.Options)
			return *m, nil
		}
	}

	if item.Type != "select" {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return *m, cmd
	}
	return *m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(width - 4).Render("Filterbox Configuration"))
	b.WriteString("\n\n")

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = config.ConfigFile() + " (not created)"
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Config file: %s", configPath)))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		isActiveCategory := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if isActiveCategory {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Items {
			b.WriteString(m.renderItem(item, isActiveCategory && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	value := getDisplayValue(item)
	paddedLabel := fmt.Sprintf("%-25s", item.Label)

	if selected {
		cursor := styles.Secondary.Render(">")
		return fmt.Sprintf("  %s %s  %s", cursor, styles.Text.Bold(true).Render(paddedLabel), styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(paddedLabel), styles.Text.Render(value))
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content strings.Builder
	if item.Type == "select" {
		fmt.Fprintf(&content, "Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content.WriteString(styles.DropdownItemSelected.Render(fmt.Sprintf(" > %s ", opt)) + "\n")
			} else {
				content.WriteString(styles.DropdownItem.Render(fmt.Sprintf("   %s ", opt)) + "\n")
			}
		}
		content.WriteString("\n" + styles.Muted.Render("j/k or arrows to select, enter to confirm, esc to cancel"))
	} else {
		fmt.Fprintf(&content, "Edit %s:\n\n", item.Label)
		content.WriteString(m.textInput.View())
		content.WriteString("\n\n" + styles.Muted.Render("enter to save, esc to cancel"))
	}

	return "\n" + borderStyle.Render(content.String())
}

func (m Model) renderHelp() string {
	keyStyle := styles.HelpKey

	if m.editing {
		return styles.HelpBar.Render(
			keyStyle.Render("enter") + " save  " +
				keyStyle.Render("esc") + " cancel",
		)
	}

	return styles.HelpBar.Render(
		keyStyle.Render("j/k") + " navigate  " +
			keyStyle.Render("tab") + " next category  " +
			keyStyle.Render("enter/space") + " edit  " +
			keyStyle.Render("r") + " reset  " +
			keyStyle.Render("q") + " quit",
	)
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) getCurrentValue() string {
	return getDisplayValue(m.currentItem())
}

func getDisplayValue(item ConfigItem) string {
	switch item.Type {
	case "bool":
		return strconv.FormatBool(viper.GetBool(item.Key))
	case "int":
		return strconv.Itoa(viper.GetInt(item.Key))
	default:
		return viper.GetString(item.Key)
	}
}

func (m Model) getCurrentSelectIndex() int {
	item := m.currentItem()
	current := strings.ToLower(viper.GetString(item.Key))
	if i := slices.Index(item.Options, current); i >= 0 {
		return i
	}
	return 0
}

// ParseValue converts edited text to the item's type.
func ParseValue(item ConfigItem, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch item.Type {
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected integer value")
		}
		return intVal, nil
	case "bool":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return boolVal, nil
	case "select":
		if !slices.Contains(item.Options, value) {
			return nil, fmt.Errorf("invalid option: %s", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// apply sets the key, validates the whole config and saves it. An invalid
// value is rolled back and reported. It returns whether the value was kept.
func (m *Model) apply(item ConfigItem, value any) bool {
	previous := viper.Get(item.Key)
	viper.Set(item.Key, value)

	if _, err := config.Load(); err != nil {
		viper.Set(item.Key, previous)
		if errs, ok := err.(config.ValidationErrors); ok {
			for _, e := range errs {
				if e.Field == item.Key {
					m.errorMsg = e.Error()
					return false
				}
			}
		}
		m.errorMsg = err.Error()
		return false
	}

	m.saveConfig()
	return true
}

func (m *Model) saveConfig() {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to create config directory: %v", err)
		return
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}

	m.infoMsg = "Saved!"
	m.configModified = true
}

// DefaultValues maps every editable key to its default.
func DefaultValues() map[string]any {
	d := config.Default()
	return map[string]any{
		"listdata.cache_size":         d.ListData.CacheSize,
		"listdata.search_debounce_ms": d.ListData.SearchDebounceMs,
		"tabs.saving_mode":            d.Tabs.SavingMode,
		"tabs.debounce_ms":            d.Tabs.DebounceMs,
		"tabs.remote_url":             d.Tabs.RemoteURL,
		"tabs.timeout_seconds":        d.Tabs.TimeoutSeconds,
		"tabs.store_dir":              d.Tabs.StoreDir,
		"tabs.application":            d.Tabs.Application,
		"tabs.user":                   d.Tabs.User,
		"tui.max_visible_items":       d.TUI.MaxVisibleItems,
		"logging.enabled":             d.Logging.Enabled,
		"logging.level":               d.Logging.Level,
		"logging.dir":                 d.Logging.Dir,
		"metrics.enabled":             d.Metrics.Enabled,
		"metrics.address":             d.Metrics.Address,
	}
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if defaultVal, ok := DefaultValues()[item.Key]; ok {
		if m.apply(item, defaultVal) {
			m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
		}
	}
}

// Run starts the interactive config UI
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
