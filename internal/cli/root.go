// Package cli provides the command-line interface for rehber360.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/core"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

var (
	// Global flags
	cfgFile       string
	transportMode string
	socketPath    string
	backendURL    string
	verbose       bool
	debug         bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rehber360",
		Short: "Rehber360 - desktop shell and maintenance tool",
		Long: `Rehber360 ` + version.Version + `
Desktop shell for the Rehber360 guidance counseling system.

GUI Mode (default when started without arguments):
  Opens the main window and the tray companion.

CLI Mode:
  Backup, restore, settings, update and export commands that work
  without the window, plus a browser-mode development bridge.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			// Command output goes to stdout; keep logs out of it.
			logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Shell configuration file (default: shell.conf in the data directory)")
	rootCmd.PersistentFlags().StringVar(&transportMode, "transport", "", "Backend transport: native, http or auto (overrides config)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Backend IPC socket or pipe path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Backend base URL for the http transport (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.Platform() + ")"

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, rootCmd.Version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate a shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
			}
		},
	})
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newInvokeCmd())
	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDevServerCmd())
	rootCmd.AddCommand(newShellCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig reads shell.conf and .env and applies the global flag overrides.
func loadConfig() (*config.ShellConfig, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if transportMode != "" {
		cfg.Transport.Mode = transportMode
	}
	if socketPath != "" {
		cfg.Transport.BackendSocket = socketPath
	}
	if backendURL != "" {
		cfg.Transport.BackendURL = backendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
	if verbose || debug {
		logging.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

// newEngine builds the shell services without a window. Call the returned
// cleanup when done.
func newEngine() (*core.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	engine, err := core.NewEngine(GetContext(), cfg, core.Options{
		EventBus: bus,
		Logger:   GetLogger(),
	})
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return engine, func() {
		engine.Stop()
		bus.Close()
	}, nil
}
