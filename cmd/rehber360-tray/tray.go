package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/ipc"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/menu"
)

// shellClient is the part of *ipc.Client the tray uses.
type shellClient interface {
	GetStatus(ctx context.Context) (*ipc.StatusData, error)
	ShowWindow(ctx context.Context) error
	Navigate(ctx context.Context, path string) error
	MenuAction(ctx context.Context, action string) error
	Quit(ctx context.Context) error
}

// trayApp manages the system tray application state.
type trayApp struct {
	client shellClient
	logger *logging.Logger
	launch func() error
	exit   func()
	tip    func(string)

	mu         sync.Mutex
	lastStatus *ipc.StatusData
	seenShell  bool
	misses     int

	done chan struct{}
}

// missesBeforeExit is how many failed polls after the shell was seen make
// the tray exit with it.
const missesBeforeExit = 2

func newTrayApp(client shellClient, logger *logging.Logger) *trayApp {
	return &trayApp{
		client: client,
		logger: logger,
		launch: launchShell,
		exit:   systray.Quit,
		tip:    systray.SetTooltip,
		done:   make(chan struct{}),
	}
}

func (a *trayApp) onReady() {
	systray.SetIcon(iconData)
	systray.SetTooltip(constants.TrayTooltip)

	a.addItems(menu.TrayMenu(), nil)

	go a.refreshLoop()
}

func (a *trayApp) onExit() {
	close(a.done)
}

// addItems mirrors the menu model into systray. parent is nil for the top level.
func (a *trayApp) addItems(items []menu.Item, parent *systray.MenuItem) {
	for _, it := range items {
		if it.Separator {
			if parent == nil {
				systray.AddSeparator()
			}
			continue
		}

		var mi *systray.MenuItem
		if parent == nil {
			mi = systray.AddMenuItem(it.Label, it.Label)
		} else {
			mi = parent.AddSubMenuItem(it.Label, it.Label)
		}
		if it.Disabled {
			mi.Disable()
		}
		if len(it.Children) > 0 {
			a.addItems(it.Children, mi)
			continue
		}
		go a.watch(mi, it)
	}
}

func (a *trayApp) watch(mi *systray.MenuItem, it menu.Item) {
	for {
		select {
		case <-mi.ClickedCh:
			a.activate(it)
		case <-a.done:
			return
		}
	}
}

// activate performs a tray menu entry against the running shell, starting
// the shell first when needed.
func (a *trayApp) activate(it menu.Item) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.IPCDefaultTimeout)
	defer cancel()

	if it.Action == menu.ActionQuit {
		if err := a.client.Quit(ctx); err != nil {
			a.logger.Debug().Err(err).Msg("Shell not reachable on quit")
		}
		a.exit()
		return
	}

	if _, err := a.client.GetStatus(ctx); err != nil {
		if err := a.launch(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start Rehber360")
		}
		return
	}

	var err error
	switch {
	case it.Path != "":
		err = a.client.Navigate(ctx, it.Path)
	case it.Action == menu.ActionShow:
		err = a.client.ShowWindow(ctx)
	case it.Action != "":
		if it.ShowWindow {
			err = a.client.ShowWindow(ctx)
		}
		if err == nil {
			err = a.client.MenuAction(ctx, it.Action)
		}
	}
	if err != nil {
		a.logger.Warn().Err(err).Str("label", it.Label).Msg("Tray action failed")
	}
}

// refreshLoop periodically refreshes the shell status.
func (a *trayApp) refreshLoop() {
	a.refreshStatus()

	ticker := time.NewTicker(constants.TrayRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshStatus()
		case <-a.done:
			return
		}
	}
}

// refreshStatus polls the shell and updates the tooltip. The tray exits
// once a shell it has seen goes away.
func (a *trayApp) refreshStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status, err := a.client.GetStatus(ctx)

	a.mu.Lock()
	if err != nil {
		a.lastStatus = nil
		a.misses++
		shouldExit := a.seenShell && a.misses >= missesBeforeExit
		a.mu.Unlock()

		a.tip(tooltip(nil))
		if shouldExit {
			a.logger.Info().Msg("Rehber360 exited, closing tray")
			a.exit()
		}
		return
	}
	a.lastStatus = status
	a.seenShell = true
	a.misses = 0
	a.mu.Unlock()

	a.tip(tooltip(status))
}

// tooltip renders the tray tooltip for a status; nil means the shell is not running.
func tooltip(st *ipc.StatusData) string {
	if st == nil {
		return constants.TrayTooltip + "\nÇalışmıyor"
	}
	text := fmt.Sprintf("%s\nSürüm %s", constants.TrayTooltip, st.Version)
	if st.LastBackup != nil {
		text += fmt.Sprintf("\nSon yedek: %s", st.LastBackup.Format("02.01.2006 15:04"))
	}
	if st.PendingUpdate != "" {
		text += fmt.Sprintf("\nGüncelleme mevcut: %s", st.PendingUpdate)
	}
	return text
}

// launchShell starts the main executable shipped next to the tray.
func launchShell() error {
	exePath, err := os.Executable()
	if err != nil {
		return err
	}
	name := "rehber360"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(filepath.Dir(exePath), name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("main application not found: %w", err)
	}
	cmd := exec.Command(path, "--gui")
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
