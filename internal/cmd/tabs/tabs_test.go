package tabs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/filterbox/internal/config"
	"github.com/Iron-Ham/filterbox/internal/tabs"
)

func setupStore(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("tabs.store_dir", t.TempDir())
	viper.Set("tabs.user", "tester")
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

func listed(t *testing.T) []tabs.Tab {
	t.Helper()
	listJSON = true
	t.Cleanup(func() { listJSON = false })
	out, err := run(t, runList)
	if err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	var ts []tabs.Tab
	if err := json.Unmarshal([]byte(out), &ts); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	return ts
}

func TestOpenListClose(t *testing.T) {
	setupStore(t)

	openTitle, openIcon = "Orders", "folder"
	t.Cleanup(func() { openTitle, openIcon = "", "" })
	out, err := run(t, runOpen, "/orders")
	if err != nil {
		t.Fatalf("runOpen() error = %v", err)
	}
	if !strings.Contains(out, "Opened /orders") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = run(t, runOpen, "/orders")
	if err != nil {
		t.Fatalf("second runOpen() error = %v", err)
	}
	if !strings.Contains(out, "already open") {
		t.Errorf("duplicate open should be reported: %s", out)
	}

	got := listed(t)
	want := []tabs.Tab{{URI: "/orders", Title: "Orders", IconName: "folder"}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("tabs = %+v, want %+v", got, want)
	}

	if _, err := run(t, runClose, "/orders"); err != nil {
		t.Fatalf("runClose() error = %v", err)
	}
	if got := listed(t); len(got) != 0 {
		t.Errorf("tabs after close = %+v, want none", got)
	}

	if _, err := run(t, runClose, "/orders"); err == nil {
		t.Error("closing a tab that is not open should fail")
	}
}

func TestListPlain(t *testing.T) {
	setupStore(t)

	out, err := run(t, runList)
	if err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out, "No open tabs") {
		t.Errorf("empty list output = %q", out)
	}

	if _, err := run(t, runOpen, "/customers"); err != nil {
		t.Fatalf("runOpen() error = %v", err)
	}
	out, err = run(t, runList)
	if err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out, "URI") || !strings.Contains(out, "/customers") {
		t.Errorf("list output = %q", out)
	}
}

func TestListJSON_Empty(t *testing.T) {
	setupStore(t)
	if got := listed(t); got == nil || len(got) != 0 {
		t.Errorf("empty JSON list = %#v, want []", got)
	}
}

func TestClear(t *testing.T) {
	setupStore(t)
	if _, err := run(t, runOpen, "/a"); err != nil {
		t.Fatalf("runOpen() error = %v", err)
	}

	out, err := run(t, runClear)
	if err != nil {
		t.Fatalf("runClear() error = %v", err)
	}
	if !strings.Contains(out, "Cleared") {
		t.Errorf("unexpected output: %s", out)
	}
	if got := listed(t); len(got) != 0 {
		t.Errorf("tabs after clear = %+v, want none", got)
	}
}

func TestNoneModeDoesNotPersist(t *testing.T) {
	setupStore(t)
	viper.Set("tabs.saving_mode", "none")

	if _, err := run(t, runOpen, "/a"); err != nil {
		t.Fatalf("runOpen() error = %v", err)
	}
	if got := listed(t); len(got) != 0 {
		t.Errorf("tabs = %+v, none mode keeps nothing between runs", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	setupStore(t)
	viper.Set("tabs.saving_mode", "cloud")

	if _, err := run(t, runList); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("runList() error = %v, want a configuration error", err)
	}
}
