package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// newConfigCmd creates the 'config' command group for shell.conf.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the shell configuration (shell.conf)",
		Long: `Configuration management commands for the desktop shell.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the backend connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup. Press Enter to keep the value in brackets.

Use --force to overwrite an existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at: %s\n", path)
					fmt.Fprintln(cmd.OutOrStdout(), "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg := config.NewShellConfig()
			out := cmd.OutOrStdout()
			r := bufio.NewReader(cmd.InOrStdin())

			fmt.Fprintln(out, "Rehber360 Shell Configuration")
			fmt.Fprintln(out, "=============================")

			var err error
			if cfg.Transport.Mode, err = promptLine(r, out, "Transport (native/http/auto)", cfg.Transport.Mode); err != nil {
				return err
			}
			if cfg.Transport.BackendURL, err = promptLine(r, out, "Backend URL", cfg.Transport.BackendURL); err != nil {
				return err
			}
			if cfg.Proxy.Mode, err = promptLine(r, out, "Proxy mode (no-proxy/system/basic/ntlm)", cfg.Proxy.Mode); err != nil {
				return err
			}
			if cfg.Proxy.Mode == config.ProxyBasic || cfg.Proxy.Mode == config.ProxyNTLM {
				if cfg.Proxy.Host, err = promptLine(r, out, "Proxy host", ""); err != nil {
					return err
				}
				port, err := promptLine(r, out, "Proxy port", strconv.Itoa(cfg.Proxy.Port))
				if err != nil {
					return err
				}
				if cfg.Proxy.Port, err = strconv.Atoi(port); err != nil {
					return fmt.Errorf("invalid proxy port %q", port)
				}
				if cfg.Proxy.User, err = promptLine(r, out, "Proxy user (optional)", ""); err != nil {
					return err
				}
			}
			updates, err := promptLine(r, out, "Check for updates (true/false)", strconv.FormatBool(cfg.Updates.Enabled))
			if err != nil {
				return err
			}
			cfg.Updates.Enabled, _ = strconv.ParseBool(updates)

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nConfiguration saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"transport.mode", cfg.Transport.Mode},
				{"transport.backend_socket", cfg.Transport.BackendSocket},
				{"transport.backend_url", cfg.Transport.BackendURL},
				{"transport.timeout_seconds", strconv.Itoa(cfg.Transport.TimeoutSeconds)},
				{"proxy.mode", cfg.Proxy.Mode},
				{"proxy.host", cfg.Proxy.Host},
				{"proxy.port", strconv.Itoa(cfg.Proxy.Port)},
				{"proxy.user", cfg.Proxy.User},
				{"updates.enabled", strconv.FormatBool(cfg.Updates.Enabled)},
				{"updates.feed_url", cfg.Updates.FeedURL},
				{"backup.directory", cfg.BackupDirectory()},
				{"remote_backup.provider", cfg.RemoteBackup.Provider},
				{"remote_backup.bucket", cfg.RemoteBackup.Bucket},
				{"remote_backup.container", cfg.RemoteBackup.Container},
				{"devserver.addr", cfg.DevServer.Addr},
				{"logging.level", cfg.Logging.Level},
				{"logging.file", strconv.FormatBool(cfg.Logging.File)},
			}
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
			}
			return tw.Flush()
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the backend connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transport: %s\n", engine.Transport().Name())

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			start := time.Now()
			if err := engine.Router().Ping(ctx); err != nil {
				fmt.Fprintf(out, "Native bridge: unreachable (%s)\n", transport.UserMessage(err))
			} else {
				fmt.Fprintf(out, "Native bridge: ok (%s)\n", time.Since(start).Round(time.Millisecond))
			}

			start = time.Now()
			if _, err := engine.Transport().Request(ctx, "/api/health", transport.RequestConfig{Method: "GET"}); err != nil {
				fmt.Fprintf(out, "Health check: failed (%s)\n", transport.UserMessage(err))
				return fmt.Errorf("backend is not reachable")
			}
			fmt.Fprintf(out, "Health check: ok (%s)\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath())
			return nil
		},
	}
}
