//go:build windows

package desktop

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// trayExecutable is the tray companion shipped next to the main executable.
const trayExecutable = "rehber360-tray.exe"

// isTrayRunning checks if the tray companion is already running.
func isTrayRunning() bool {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snapshot, &entry); err != nil {
		return false
	}
	for {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), trayExecutable) {
			return true
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			return false
		}
	}
}

// launchTrayIfNeeded launches the tray companion if it exists and isn't already running.
func (a *App) launchTrayIfNeeded() {
	if isTrayRunning() {
		return
	}

	exePath, err := os.Executable()
	if err != nil {
		return
	}

	trayPath := filepath.Join(filepath.Dir(exePath), trayExecutable)
	if _, err := os.Stat(trayPath); os.IsNotExist(err) {
		return
	}

	cmd := exec.Command(trayPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW,
	}

	if err := cmd.Start(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to launch tray companion")
		return
	}
	_ = cmd.Process.Release()

	a.logger.Info().Msg("Tray companion launched")
}
