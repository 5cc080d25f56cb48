// Rehber360 - desktop shell for the Rehber360 guidance counseling system.
//
// Mode selection:
// - No args + display available → GUI mode
// - No args + no display → CLI help
// - --gui → GUI mode
// - --cli → CLI mode (force)
// - CLI subcommands/flags → CLI mode
//
// Build with: wails build (for all platforms)
package main

import (
	"embed"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/rehber360/rehber360-desktop/internal/cli"
	"github.com/rehber360/rehber360-desktop/internal/desktop"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if isCLIMode(os.Args[1:]) {
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// Wails uses its own webview input handling; ibus is unnecessary.
	if runtime.GOOS == "linux" && os.Getenv("GTK_IM_MODULE") == "" {
		os.Setenv("GTK_IM_MODULE", "none")
	}
	desktop.Assets = assets
	if err := desktop.Run(configFlag(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliCommands are the first arguments that select CLI mode.
var cliCommands = []string{
	"map", "invoke", "request", "backup", "migrate", "settings", "config",
	"setup", "update", "export", "import", "devserver", "shell", "version", "completion", "help",
	"--help", "-h", "--version",
}

// isCLIMode determines whether to run in CLI mode based on arguments and environment.
//
// CLI mode when:
// - --cli flag is present (force CLI mode)
// - a CLI subcommand or --help/--version is present
// - no display is available (DISPLAY/WAYLAND_DISPLAY not set on Linux)
//
// GUI mode when:
// - --gui flag is present (force GUI mode)
// - no arguments (other than --config) and a display is available
func isCLIMode(args []string) bool {
	if slices.Contains(args, "--cli") {
		return true
	}
	if slices.Contains(args, "--gui") {
		return false
	}

	for _, arg := range args {
		if slices.Contains(cliCommands, arg) {
			return true
		}
	}

	rest := stripConfigFlag(args)
	if len(rest) == 0 {
		if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return true
		}
		return false
	}

	// Unknown arguments: let the CLI report them rather than opening a window.
	return true
}

// configFlag returns the value of --config/-c, if given.
func configFlag(args []string) string {
	for i, arg := range args {
		switch {
		case (arg == "--config" || arg == "-c") && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func stripConfigFlag(args []string) []string {
	var rest []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" || args[i] == "-c":
			i++
		case strings.HasPrefix(args[i], "--config="):
		default:
			rest = append(rest, args[i])
		}
	}
	return rest
}
