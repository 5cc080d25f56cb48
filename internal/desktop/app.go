// Package desktop provides the Wails-based desktop shell for Rehber360.
package desktop

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/core"
	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/ipc"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/menu"
	"github.com/rehber360/rehber360-desktop/internal/version"
	"github.com/rehber360/rehber360-desktop/internal/window"
)

// Assets holds the embedded frontend files, passed in from main package.
var Assets embed.FS

// App is the main Wails application struct.
// All public methods are exposed to the frontend as callable functions.
type App struct {
	ctx    context.Context
	engine *core.Engine
	logger *logging.Logger

	window     *window.Manager
	dialogs    *dialogs.Service
	dispatcher *menu.Dispatcher

	eventBridge *EventBridge
	ipcServer   *ipc.Server

	// quitting is set once a real quit was requested, so close-to-tray no
	// longer intercepts the close.
	quitting atomic.Bool

	readyOnce sync.Once
	ready     chan struct{}
}

// startup is called when the app starts. The context is saved
// so we can call the Wails runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.window = window.NewManager(
		&wailsWindow{ctx: ctx, quit: a.quit},
		a.engine.Settings(),
		a.engine.WindowState(),
		a.engine.Events(),
		a.logger.Component("window"),
	)
	a.window.Restore()
	a.dialogs = dialogs.NewService(&wailsDialogs{ctx: ctx}, a.logger.Component("dialogs"))
	a.registerMenuHandlers()

	a.eventBridge = NewEventBridge(ctx, a.engine.Events(), a.logger.Component("bridge"))
	if err := a.eventBridge.Start(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start event bridge")
	}

	a.engine.Updater().SetQuit(a.quit)
	a.engine.Start(ctx)

	a.ipcServer = ipc.NewServer(ipc.ShellEndpoint, &shellHandler{app: a}, a.logger.Component("ipc"))
	if err := a.ipcServer.Start(); err != nil {
		a.logger.Warn().Err(err).Msg("Shell IPC server not started, tray companion will be unavailable")
		a.ipcServer = nil
	}

	a.importLegacyDatabase(ctx)
	a.launchTrayIfNeeded()

	a.readyOnce.Do(func() { close(a.ready) })
	a.logger.Info().Str("version", version.Version).Msg("Wails application started")
}

// domReady is called after the frontend DOM is ready.
func (a *App) domReady(ctx context.Context) {
	a.logger.Debug().Msg("Frontend DOM ready")
}

// beforeClose is called when the window close is requested.
// Return true to prevent closing.
func (a *App) beforeClose(ctx context.Context) bool {
	if a.quitting.Load() || a.window == nil {
		return false
	}
	if a.window.ShouldHideOnClose() {
		a.window.Hide()
		a.logger.Debug().Msg("Window hidden to tray")
		return true
	}
	a.quitting.Store(true)
	a.window.FlushState()
	return false
}

// shutdown is called at application termination.
func (a *App) shutdown(ctx context.Context) {
	a.logger.Info().Msg("Wails application shutting down")

	if a.ipcServer != nil {
		a.ipcServer.Stop()
	}
	a.engine.Stop()
	if a.eventBridge != nil {
		a.eventBridge.Stop()
	}
}

// quit exits the application without hiding to the tray.
func (a *App) quit() {
	a.quitting.Store(true)
	if a.window != nil {
		a.window.FlushState()
	}
	runtime.Quit(a.ctx)
}

// registerMenuHandlers binds shell menu actions to the window and services.
func (a *App) registerMenuHandlers() {
	d := a.dispatcher
	d.Handle(menu.ActionQuit, a.quit)
	d.Handle(menu.ActionShow, a.window.Show)
	d.Handle(menu.ActionToggleFullscreen, func() { a.window.ToggleFullscreen() })
	d.Handle(menu.ActionReload, a.window.Reload)
	d.Handle(menu.ActionZoomIn, func() { a.window.ZoomIn() })
	d.Handle(menu.ActionZoomOut, func() { a.window.ZoomOut() })
	d.Handle(menu.ActionZoomReset, func() { a.window.ResetZoom() })
	d.Handle(menu.ActionOpenDocs, func() { a.openURL(constants.DocsURL) })
	d.Handle(menu.ActionOpenChangelog, func() { a.openURL(constants.ChangelogURL) })
	d.Handle(menu.ActionCheckUpdates, func() {
		go a.engine.Updater().Check(a.ctx, true)
	})
	d.Handle(menu.ActionToggleDevTools, func() {
		a.engine.Events().PublishToast(events.ToastDefault, "Geliştirici Araçları", "Sayfaya sağ tıklayıp Inspect seçin")
	})
	for _, cmd := range []string{menu.ActionUndo, menu.ActionRedo, menu.ActionCut, menu.ActionCopy, menu.ActionPaste, menu.ActionSelectAll} {
		command := cmd
		d.Handle(command, func() { execEdit(a.ctx, command) })
	}
}

func (a *App) openURL(url string) {
	if err := a.engine.Shell().OpenExternal(url); err != nil {
		a.logger.Warn().Err(err).Str("url", url).Msg("Failed to open link")
	}
}

// importLegacyDatabase copies a database from an earlier desktop build into
// place when no current database exists.
func (a *App) importLegacyDatabase(ctx context.Context) {
	dbPath := a.engine.Backups().DatabasePath()
	if _, err := os.Stat(dbPath); err == nil {
		return
	}
	legacy, ok := backup.FirstValidLegacy(config.LegacyDatabaseCandidates())
	if !ok {
		return
	}
	report, err := a.engine.Migrator().Migrate(ctx, legacy.Path)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", legacy.Path).Msg("Legacy database import failed")
		return
	}
	a.logger.Info().Str("path", legacy.Path).Bool("copied", report.Copied).Msg("Legacy database imported")
}

// Run launches the Wails GUI application.
func Run(configPath string) error {
	config.LoadDotEnv()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	defer bus.Close()

	logger := logging.NewLogger("gui", bus)
	logging.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
	if os.Getenv("REHBER360_DEBUG") != "" {
		logging.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.Logging.File {
		fileLog, err := logging.OpenFileLog(config.LogDirectory())
		if err != nil {
			logger.Warn().Err(err).Msg("File logging disabled")
		} else {
			defer fileLog.Close()
			logger.AttachFile(fileLog)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn().Err(err).Msg("Invalid shell.conf, using defaults")
		cfg = config.NewShellConfig()
		cfg.ApplyEnv()
	}

	// Check for display on Linux
	if goruntime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("GUI mode requires a display. No display detected.\n" +
				"DISPLAY and WAYLAND_DISPLAY are not set.\n" +
				"Use 'rehber360 --help' for command line mode")
		}
	}

	if !EnsureSingleInstance() {
		activateRunningInstance()
		logger.Info().Msg("Another instance is running")
		return nil
	}
	if activateRunningInstance() {
		logger.Info().Msg("Another instance is running, activated it instead")
		return nil
	}

	ctx := context.Background()
	app := &App{
		logger: logger,
		ready:  make(chan struct{}),
	}
	engine, err := core.NewEngine(ctx, cfg, core.Options{
		EventBus: bus,
		Logger:   logger,
		URLOpener: func(url string) {
			<-app.ready
			runtime.BrowserOpenURL(app.ctx, url)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	app.engine = engine
	app.dispatcher = menu.NewDispatcher(bus, logger.Component("menu"))

	width, height := constants.DefaultWindowWidth, constants.DefaultWindowHeight
	if saved, ok, _ := engine.WindowState().Load(); ok {
		width, height = saved.Width, saved.Height
	}

	err = wails.Run(&options.App{
		Title:     constants.AppName,
		Width:     width,
		Height:    height,
		MinWidth:  constants.MinWindowWidth,
		MinHeight: constants.MinWindowHeight,
		AssetServer: &assetserver.Options{
			Assets: Assets,
		},
		Menu:                     menu.Build(menu.AppMenu(cfg.DevMode), app.dispatcher),
		StartHidden:              engine.Settings().Get().StartMinimized && engine.Settings().Get().MinimizeToTray,
		EnableDefaultContextMenu: cfg.DevMode,
		BackgroundColour:         &options.RGBA{R: 248, G: 250, B: 252, A: 1},
		OnStartup:                app.startup,
		OnDomReady:               app.domReady,
		OnBeforeClose:            app.beforeClose,
		OnShutdown:               app.shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   constants.AppName,
				Message: fmt.Sprintf("Sürüm %s\n\n%s", version.Version, constants.TrayTooltip),
			},
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			WebviewBrowserPath:   getWebView2BrowserPath(),
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
		},
	})

	if err != nil {
		return fmt.Errorf("wails application error: %w", err)
	}

	return nil
}

// activateRunningInstance asks an already running shell to show its window.
// Returns true when one answered.
func activateRunningInstance() bool {
	client := ipc.NewClient(ipc.ShellEndpoint)
	ctx, cancel := context.WithTimeout(context.Background(), constants.IPCDefaultTimeout)
	defer cancel()
	if !client.IsRunning(ctx) {
		return false
	}
	return client.ShowWindow(ctx) == nil
}

// getWebView2BrowserPath returns the path to a bundled WebView2 Fixed Version Runtime.
// Returns empty string to use system-installed WebView2.
func getWebView2BrowserPath() string {
	if goruntime.GOOS != "windows" {
		return ""
	}

	exePath, err := os.Executable()
	if err != nil {
		return ""
	}

	webview2Dir := filepath.Join(filepath.Dir(exePath), "webview2")
	if info, err := os.Stat(webview2Dir); err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(webview2Dir, "msedgewebview2.exe")); err == nil {
			return webview2Dir
		}
	}

	return ""
}
