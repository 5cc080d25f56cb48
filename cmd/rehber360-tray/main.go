// Rehber360 Tray Companion - system tray icon for the desktop shell.
//
// The tray talks to the running window over the shell IPC endpoint
// (<data dir>/shell.sock, or \\.\pipe\rehber360-shell on Windows).
//
// Build for Windows:
//
//	GOOS=windows go build -ldflags "-H=windowsgui" ./cmd/rehber360-tray
//
// Features:
//   - Shows window, backup and update status in the tooltip
//   - Menu items: Göster, Hızlı Erişim, Ayarlar, Çıkış
//   - Starts the main application when it is not running
package main

import (
	"errors"
	"fmt"
	"os"

	"fyne.io/systray"

	"github.com/rehber360/rehber360-desktop/internal/ipc"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// trayEndpoint is held by the running tray so a second copy exits at once.
const trayEndpoint = "tray"

func main() {
	logger := logging.NewDefaultCLILogger().Component("tray")

	lock := ipc.NewServer(trayEndpoint, ipc.BaseHandler{}, logger)
	if err := lock.Start(); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer lock.Stop()

	app := newTrayApp(ipc.NewClient(ipc.ShellEndpoint), logger)
	systray.Run(app.onReady, app.onExit)
}
