package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "tabs.debounce_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSavingModes returns the list of valid tab saving modes.
// These must match tabs.SavingModes (defined separately to keep config a leaf package).
func ValidSavingModes() []string {
	return []string{"none", "local", "remote"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateListData()...)
	errors = append(errors, c.validateTabs()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMetrics()...)

	return errors
}

// validateListData validates the ListDataConfig
func (c *Config) validateListData() []ValidationError {
	var errors []ValidationError

	const maxCacheSize = 1_000_000
	if c.ListData.CacheSize < 0 || c.ListData.CacheSize > maxCacheSize {
		errors = append(errors, ValidationError{
			Field:   "listdata.cache_size",
			Value:   c.ListData.CacheSize,
			Message: fmt.Sprintf("must be between 0 and %d", maxCacheSize),
		})
	}

	const maxSearchDebounceMs = 10_000
	if c.ListData.SearchDebounceMs < 0 || c.ListData.SearchDebounceMs > maxSearchDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "listdata.search_debounce_ms",
			Value:   c.ListData.SearchDebounceMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxSearchDebounceMs),
		})
	}

	return errors
}

// validateTabs validates the TabsConfig
func (c *Config) validateTabs() []ValidationError {
	var errors []ValidationError

	mode := strings.ToLower(c.Tabs.SavingMode)
	if mode != "" && !slices.Contains(ValidSavingModes(), mode) {
		errors = append(errors, ValidationError{
			Field:   "tabs.saving_mode",
			Value:   c.Tabs.SavingMode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSavingModes(), ", ")),
		})
	}

	const maxDebounceMs = 60_000
	if c.Tabs.DebounceMs < 0 || c.Tabs.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "tabs.debounce_ms",
			Value:   c.Tabs.DebounceMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxDebounceMs),
		})
	}

	if c.Tabs.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "tabs.timeout_seconds",
			Value:   c.Tabs.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	if mode == "remote" && c.Tabs.RemoteURL == "" {
		errors = append(errors, ValidationError{
			Field:   "tabs.remote_url",
			Value:   c.Tabs.RemoteURL,
			Message: "is required when saving_mode is remote",
		})
	}
	if c.Tabs.RemoteURL != "" {
		u, err := url.Parse(c.Tabs.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "tabs.remote_url",
				Value:   c.Tabs.RemoteURL,
				Message: "must be an absolute http or https URL",
			})
		}
	}

	if strings.ContainsAny(c.Tabs.Application, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "tabs.application",
			Value:   c.Tabs.Application,
			Message: "must not contain path separators",
		})
	}
	if strings.ContainsAny(c.Tabs.User, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "tabs.user",
			Value:   c.Tabs.User,
			Message: "must not contain path separators",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	// 0 means use default, which is valid.
	const minVisible = 3
	const maxVisible = 100
	if c.TUI.MaxVisibleItems != 0 && (c.TUI.MaxVisibleItems < minVisible || c.TUI.MaxVisibleItems > maxVisible) {
		errors = append(errors, ValidationError{
			Field:   "tui.max_visible_items",
			Value:   c.TUI.MaxVisibleItems,
			Message: fmt.Sprintf("must be between %d and %d", minVisible, maxVisible),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateMetrics validates the MetricsConfig
func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if !c.Metrics.Enabled {
		return errors
	}
	if _, _, err := net.SplitHostPort(c.Metrics.Address); err != nil {
		errors = append(errors, ValidationError{
			Field:   "metrics.address",
			Value:   c.Metrics.Address,
			Message: "must be a host:port listen address",
		})
	}

	return errors
}
