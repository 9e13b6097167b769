// Package tabs provides the "tabs" commands for inspecting and editing the
// persisted open tabs.
package tabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/filterbox/internal/cmd/cmdutil"
	"github.com/Iron-Ham/filterbox/internal/tabs"
	"github.com/Iron-Ham/filterbox/internal/tui/tabbar"
)

const closeTimeout = 15 * time.Second

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "Inspect and edit the saved open tabs",
	Long: `Inspect and edit the open tabs persisted by filterbox.

Tabs are saved according to tabs.saving_mode: "none" keeps them in memory,
"local" writes them to the local store and "remote" posts them to
tabs.remote_url.`,
}

var tabsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the saved tabs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var tabsOpenCmd = &cobra.Command{
	Use:   "open <uri>",
	Short: "Open a tab (no-op if a tab with the URI is already open)",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var tabsCloseCmd = &cobra.Command{
	Use:   "close <uri>",
	Short: "Close the tab with the given URI",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var tabsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Sign out: drop pending saves and delete the local tab store",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var tabsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the tabs whenever the local store changes",
	Long: `Print the tabs whenever another process saves them to the local store.
Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	listJSON  bool
	openTitle string
	openIcon  string
)

func init() {
	tabsListCmd.Flags().BoolVar(&listJSON, "json", false, "Print the tabs as a JSON array")
	tabsOpenCmd.Flags().StringVar(&openTitle, "title", "", "Tab title")
	tabsOpenCmd.Flags().StringVar(&openIcon, "icon", "", "Tab icon name")

	tabsCmd.AddCommand(tabsListCmd)
	tabsCmd.AddCommand(tabsOpenCmd)
	tabsCmd.AddCommand(tabsCloseCmd)
	tabsCmd.AddCommand(tabsClearCmd)
	tabsCmd.AddCommand(tabsWatchCmd)
}

// Register adds the tabs commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(tabsCmd)
}

// withService runs fn against a loaded tabs service and flushes pending
// saves before returning.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *tabs.Service) error) (err error) {
	rt, err := cmdutil.Setup()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := rt.Close(ctx); err == nil && cerr != nil {
			err = cerr
		}
	}()

	svc, err := rt.TabsService()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := svc.Close(ctx); err == nil && cerr != nil {
			err = fmt.Errorf("failed to save tabs: %w", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tabs: %w", err)
	}
	return fn(ctx, svc)
}

func runList(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *tabs.Service) error {
		return printTabs(cmd.OutOrStdout(), svc.Tabs(), listJSON)
	})
}

func printTabs(out io.Writer, ts []tabs.Tab, asJSON bool) error {
	if asJSON {
		if ts == nil {
			ts = []tabs.Tab{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ts)
	}

	if width, ok := terminalWidth(out); ok {
		fmt.Fprintln(out, tabbar.Render(ts, len(ts)-1, width))
	}
	if len(ts) == 0 {
		fmt.Fprintln(out, "No open tabs")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "URI\tTITLE\tICON")
	for _, t := range ts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.URI, t.Title, t.IconName)
	}
	return w.Flush()
}

// terminalWidth reports the width of out when it is an interactive terminal.
func terminalWidth(out io.Writer) (int, bool) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}
	return width, true
}

func runOpen(cmd *cobra.Command, args []string) error {
	tab := tabs.Tab{URI: args[0], Title: openTitle, IconName: openIcon}
	return withService(cmd, func(ctx context.Context, svc *tabs.Service) error {
		if !svc.OpenTab(tab) {
			fmt.Fprintf(cmd.OutOrStdout(), "Tab already open: %s\n", tab.URI)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", tab.URI)
		return nil
	})
}

func runClose(cmd *cobra.Command, args []string) error {
	uri := args[0]
	return withService(cmd, func(ctx context.Context, svc *tabs.Service) error {
		if !svc.CloseTab(uri) {
			return fmt.Errorf("no open tab with URI %s", uri)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Closed %s\n", uri)
		return nil
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *tabs.Service) error {
		if err := svc.SignOut(ctx); err != nil {
			return fmt.Errorf("failed to clear tabs: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared saved tabs")
		return nil
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *tabs.Service) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if err := printTabs(out, svc.Tabs(), listJSON); err != nil {
			return err
		}
		err := svc.Watch(ctx, func(ts []tabs.Tab) {
			fmt.Fprintln(out)
			_ = printTabs(out, ts, listJSON)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
}
