package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestEnvironment points config and the tab store at temp dirs.
func setupTestEnvironment(t *testing.T) (storeDir string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	storeDir = t.TempDir()
	t.Setenv("FILTERBOX_TABS_STORE_DIR", storeDir)
	t.Setenv("FILTERBOX_TABS_USER", "tester")
	viper.Reset()
	t.Cleanup(viper.Reset)
	return storeDir
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "filterbox" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "filterbox")
	}

	// Compare by Name(), not Use which includes args
	expectedCmds := []string{"config", "tabs", "pick"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(output, "filterbox") {
		t.Errorf("expected the config path in output: %s", output)
	}
}

func TestTabsCommands_EnvConfig(t *testing.T) {
	storeDir := setupTestEnvironment(t)

	if _, err := executeCommand(rootCmd, "tabs", "open", "/orders", "--title", "Orders"); err != nil {
		t.Fatalf("tabs open failed: %v", err)
	}

	// The env-configured store dir received the data.
	if _, err := os.Stat(filepath.Join(storeDir, "filterbox", "tester", "TabDataStore")); err != nil {
		t.Errorf("tab data not written under FILTERBOX_TABS_STORE_DIR: %v", err)
	}

	output, err := executeCommand(rootCmd, "tabs", "list", "--json")
	if err != nil {
		t.Fatalf("tabs list failed: %v", err)
	}
	var tabs []map[string]string
	if err := json.Unmarshal([]byte(output), &tabs); err != nil {
		t.Fatalf("tabs list output is not JSON: %v\n%s", err, output)
	}
	if len(tabs) != 1 || tabs[0]["uri"] != "/orders" || tabs[0]["title"] != "Orders" {
		t.Errorf("tabs = %v", tabs)
	}
}

func TestTabsCommands_InvalidEnv(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("FILTERBOX_TABS_SAVING_MODE", "cloud")

	if _, err := executeCommand(rootCmd, "tabs", "list"); err == nil {
		t.Error("an invalid saving mode from the environment should fail")
	}
}

func TestPickCommand(t *testing.T) {
	setupTestEnvironment(t)

	path := filepath.Join(t.TempDir(), "colors.yaml")
	doc := "name: Color\nkind: enum\nmembers: [red, green, blue]\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	output, err := executeCommand(rootCmd, "pick", "--file", path, "--select", "blue")
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if !strings.Contains(output, `"blue"`) || !strings.Contains(output, "Color: blue") {
		t.Errorf("unexpected pick output: %s", output)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
		{
			name: "server error is retryable",
			err:  errors.NewPersistenceError("save tabs", nil).WithMode("remote").WithStatusCode(503),
			want: "persistence error [mode=remote, status=503]: save tabs (temporary failure, try again)",
		},
		{
			name: "client error is not",
			err:  errors.NewPersistenceError("save tabs", nil).WithStatusCode(400),
			want: "persistence error [status=400]: save tabs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage(tt.err); got != tt.want {
				t.Errorf("errorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
