// Package logging provides structured logging for filterbox.
//
// It wraps Go's log/slog to emit JSON lines with persistent attributes so
// fetches, autosave writes and TUI events can be correlated after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	tabsLog := logger.WithComponent("tabs")
//	tabsLog.Info("tabs saved", "mode", "local", "count", 3)
//
// A nil *Logger is safe to call and discards everything, which keeps optional
// logger fields in library types free of nil checks. [NopLogger] is the
// explicit equivalent for tests.
package logging
