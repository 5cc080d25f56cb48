package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/ipc"
)

// newShellCmd creates the 'shell' command group, which controls a running
// desktop window over the shell IPC endpoint.
func newShellCmd() *cobra.Command {
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Control the running Rehber360 window",
		Long: `Commands for a running Rehber360 window.

Commands:
  status    - Show window, transport, backup and update status
  show      - Bring the window to the front
  navigate  - Open a page (e.g. /students)
  menu      - Trigger a menu action (e.g. dbBackup)
  quit      - Quit the application`,
	}

	shellCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the status of the running application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(ctx context.Context, c *ipc.Client) error {
				st, err := c.GetStatus(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "State:      %s\n", st.State)
				fmt.Fprintf(out, "Version:    %s\n", st.Version)
				fmt.Fprintf(out, "Transport:  %s\n", st.Transport)
				fmt.Fprintf(out, "Window:     %s\n", visibility(st.WindowVisible))
				fmt.Fprintf(out, "Uptime:     %s\n", st.Uptime)
				if st.LastBackup != nil {
					fmt.Fprintf(out, "Last backup: %s\n", st.LastBackup.Format("2006-01-02 15:04"))
				}
				if st.PendingUpdate != "" {
					fmt.Fprintln(out, "An update is available")
				}
				return nil
			})
		},
	})

	shellCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Bring the window to the front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(ctx context.Context, c *ipc.Client) error {
				return c.ShowWindow(ctx)
			})
		},
	})

	shellCmd.AddCommand(&cobra.Command{
		Use:   "navigate <path>",
		Short: "Show the window and open a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(ctx context.Context, c *ipc.Client) error {
				return c.Navigate(ctx, args[0])
			})
		},
	})

	shellCmd.AddCommand(&cobra.Command{
		Use:   "menu <action>",
		Short: "Trigger a menu action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(ctx context.Context, c *ipc.Client) error {
				return c.MenuAction(ctx, args[0])
			})
		},
	})

	shellCmd.AddCommand(&cobra.Command{
		Use:   "quit",
		Short: "Quit the running application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(ctx context.Context, c *ipc.Client) error {
				return c.Quit(ctx)
			})
		},
	})

	return shellCmd
}

func withShell(fn func(ctx context.Context, c *ipc.Client) error) error {
	c := ipc.NewClient(ipc.ShellEndpoint)
	ctx, cancel := context.WithTimeout(GetContext(), constants.IPCDefaultTimeout+2*time.Second)
	defer cancel()
	if !c.IsRunning(ctx) {
		return fmt.Errorf("Rehber360 is not running")
	}
	return fn(ctx, c)
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}
