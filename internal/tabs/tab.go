// Package tabs keeps the list of open UI tabs and autosaves it.
//
// A Service holds the tabs in memory and persists them according to its
// SavingMode: not at all, to a LocalStore on disk, or to a RemoteStore over
// HTTP. Saves are debounced so a burst of open and close operations results
// in one write of the final list.
package tabs

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

// Tab is one open tab.
type Tab struct {
	URI      string `json:"uri"`
	Title    string `json:"title"`
	IconName string `json:"iconName"`
}

// SavingMode selects where tabs are persisted.
type SavingMode int

const (
	// SavingNone keeps tabs in memory only.
	SavingNone SavingMode = iota
	// SavingLocal persists tabs to the local store.
	SavingLocal
	// SavingRemote persists tabs to the remote tab endpoint.
	SavingRemote
)

// String returns the configuration name of the mode.
func (m SavingMode) String() string {
	switch m {
	case SavingNone:
		return "none"
	case SavingLocal:
		return "local"
	case SavingRemote:
		return "remote"
	default:
		return fmt.Sprintf("SavingMode(%d)", int(m))
	}
}

// ParseSavingMode parses "none", "local" or "remote", ignoring case.
func ParseSavingMode(s string) (SavingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return SavingNone, nil
	case "local":
		return SavingLocal, nil
	case "remote":
		return SavingRemote, nil
	default:
		return SavingNone, fmt.Errorf("%w: %q", errors.ErrUnknownSavingMode, s)
	}
}

// SavingModes lists every mode name accepted by ParseSavingMode.
func SavingModes() []string {
	return []string{"none", "local", "remote"}
}

// IndexOf returns the index of the tab with uri, or -1.
func IndexOf(tabs []Tab, uri string) int {
	for i, t := range tabs {
		if t.URI == uri {
			return i
		}
	}
	return -1
}
