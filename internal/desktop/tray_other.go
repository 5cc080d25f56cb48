//go:build !windows

package desktop

import (
	"os"
	"os/exec"
	"path/filepath"
)

// launchTrayIfNeeded starts the tray companion next to the executable, if
// present. The companion exits on its own when another copy holds the tray.
func (a *App) launchTrayIfNeeded() {
	exePath, err := os.Executable()
	if err != nil {
		return
	}
	trayPath := filepath.Join(filepath.Dir(exePath), "rehber360-tray")
	if _, err := os.Stat(trayPath); err != nil {
		return
	}

	cmd := exec.Command(trayPath)
	if err := cmd.Start(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to launch tray companion")
		return
	}
	_ = cmd.Process.Release()
	a.logger.Info().Msg("Tray companion launched")
}
