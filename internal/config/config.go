package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete filterbox configuration
type Config struct {
	ListData ListDataConfig `mapstructure:"listdata"`
	Tabs     TabsConfig     `mapstructure:"tabs"`
	TUI      TUIConfig      `mapstructure:"tui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ListDataConfig controls data sources behind filter boxes
type ListDataConfig struct {
	// CacheSize bounds how many resolved items each source keeps resident (default: 1024)
	CacheSize int `mapstructure:"cache_size"`
	// SearchDebounceMs delays a search after the last keystroke (default: 150, 0 = search immediately)
	SearchDebounceMs int `mapstructure:"search_debounce_ms"`
}

// TabsConfig controls where open tabs are persisted
type TabsConfig struct {
	// SavingMode is "none", "local" or "remote" (default: "local")
	SavingMode string `mapstructure:"saving_mode"`
	// DebounceMs is how long autosave waits for further changes (default: 1000)
	DebounceMs int `mapstructure:"debounce_ms"`
	// RemoteURL is the base URL of the tab service. Required for remote saving.
	RemoteURL string `mapstructure:"remote_url"`
	// TimeoutSeconds bounds each remote request (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// StoreDir is the local store root.
	// If empty, defaults to "tabs" under the config directory. Supports ~.
	StoreDir string `mapstructure:"store_dir"`
	// Application scopes the local store (default: "filterbox")
	Application string `mapstructure:"application"`
	// User scopes the local store. If empty, $USER is used.
	User string `mapstructure:"user"`
}

// TUIConfig controls the terminal filter box
type TUIConfig struct {
	// MaxVisibleItems limits how many rows the list shows at once (default: 10)
	MaxVisibleItems int `mapstructure:"max_visible_items"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging to a file is enabled (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory holding filterbox.log. If empty, the config directory is used.
	Dir string `mapstructure:"dir"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Enabled serves /metrics while a command runs (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Address is the listen address (default: "127.0.0.1:9464")
	Address string `mapstructure:"address"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		ListData: ListDataConfig{
			CacheSize:        1024,
			SearchDebounceMs: 150,
		},
		Tabs: TabsConfig{
			SavingMode:     "local",
			DebounceMs:     1000,
			RemoteURL:      "",
			TimeoutSeconds: 10,
			StoreDir:       "", // Empty means <config dir>/tabs
			Application:    "filterbox",
			User:           "",
		},
		TUI: TUIConfig{
			MaxVisibleItems: 10,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Dir:     "",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: "127.0.0.1:9464",
		},
	}
}

// SearchDebounce returns the search debounce as a time.Duration
func (c *ListDataConfig) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// SaveDelay returns the autosave delay as a time.Duration
func (c *TabsConfig) SaveDelay() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Timeout returns the remote request timeout as a time.Duration
func (c *TabsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveStoreDir returns the local store root.
// If StoreDir is empty, it returns "tabs" under the config directory.
// If StoreDir starts with ~, it expands to the user's home directory.
func (c *TabsConfig) ResolveStoreDir() string {
	if c.StoreDir == "" {
		return filepath.Join(ConfigDir(), "tabs")
	}
	return expandHome(c.StoreDir)
}

// ResolveUser returns the configured user, falling back to $USER.
func (c *TabsConfig) ResolveUser() string {
	if c.User != "" {
		return c.User
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

// ResolveDir returns the log directory, defaulting to the config directory.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return ConfigDir()
	}
	return expandHome(c.Dir)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// ListData defaults
	viper.SetDefault("listdata.cache_size", defaults.ListData.CacheSize)
	viper.SetDefault("listdata.search_debounce_ms", defaults.ListData.SearchDebounceMs)

	// Tabs defaults
	viper.SetDefault("tabs.saving_mode", defaults.Tabs.SavingMode)
	viper.SetDefault("tabs.debounce_ms", defaults.Tabs.DebounceMs)
	viper.SetDefault("tabs.remote_url", defaults.Tabs.RemoteURL)
	viper.SetDefault("tabs.timeout_seconds", defaults.Tabs.TimeoutSeconds)
	viper.SetDefault("tabs.store_dir", defaults.Tabs.StoreDir)
	viper.SetDefault("tabs.application", defaults.Tabs.Application)
	viper.SetDefault("tabs.user", defaults.Tabs.User)

	// TUI defaults
	viper.SetDefault("tui.max_visible_items", defaults.TUI.MaxVisibleItems)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.address", defaults.Metrics.Address)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filterbox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".filterbox"
	}
	return filepath.Join(home, ".config", "filterbox")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
