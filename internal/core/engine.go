// Package core assembles the shell services (settings, transport, command
// router, backups, updater, first-run wizard) shared by the desktop app and the CLI.
package core

import (
	"context"
	"fmt"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/commands"
	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/http"
	"github.com/rehber360/rehber360-desktop/internal/ipc"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/notify"
	"github.com/rehber360/rehber360-desktop/internal/setup"
	"github.com/rehber360/rehber360-desktop/internal/store"
	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/updater"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

// transportProbeTimeout bounds the backend ping used by the auto transport mode.
const transportProbeTimeout = 2 * time.Second

// Options customizes engine construction. All fields are optional.
type Options struct {
	EventBus *events.EventBus
	Logger   *logging.Logger

	// URLOpener opens external links. Nil uses the platform opener.
	URLOpener dialogs.URLOpener

	// Backend overrides the IPC client used to reach the backend.
	Backend transport.Invoker
}

// Engine owns the shell services and their lifecycle.
type Engine struct {
	config   *config.ShellConfig
	eventBus *events.EventBus
	logger   *logging.Logger

	settings    *store.Store
	windowState *store.WindowStateStore
	httpClient  *nethttp.Client

	router    *commands.Router
	transport transport.Transport
	client    *transport.Client

	notifier  *notify.Notifier
	shell     *dialogs.Shell
	backups   *backup.Manager
	scheduler *backup.Scheduler
	migrator  *backup.Migrator
	updater   *updater.Updater
	wizard    *setup.Wizard

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewEngine creates the services for cfg. A nil cfg loads shell.conf from the
// default location.
func NewEngine(ctx context.Context, cfg *config.ShellConfig, opts Options) (*Engine, error) {
	if cfg == nil {
		var err error
		cfg, err = config.Load("")
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	bus := opts.EventBus
	if bus == nil {
		bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	settings, err := store.Open(config.StorePath(), bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	retryClient, err := http.NewRetryClient(cfg.Proxy, logger.Component("http"))
	if err != nil {
		return nil, err
	}
	httpClient := retryClient.StandardClient()

	backend := opts.Backend
	if backend == nil {
		backend = newBackendClient(cfg.Transport)
	}

	e := &Engine{
		config:      cfg,
		eventBus:    bus,
		logger:      logger,
		settings:    settings,
		windowState: store.NewWindowStateStore(config.WindowStatePath(), logger),
		httpClient:  httpClient,
		router:      commands.NewRouter(backend, logger.Component("commands")),
		notifier:    notify.NewNotifier(settings, bus, logger.Component("notify")),
		shell:       dialogs.NewShell(opts.URLOpener, logger),
	}

	e.backups = backup.NewManager(config.DatabasePath(), cfg.BackupDirectory(), bus, logger.Component("backup"))
	if cfg.RemoteBackup.Provider != "" && cfg.RemoteBackup.Provider != config.RemoteNone {
		uploader, err := backup.NewUploader(ctx, cfg.RemoteBackup, cfg.Proxy, logger)
		if err != nil {
			// Local backups still work without the off-site copy.
			logger.Warn().Err(err).Str("provider", cfg.RemoteBackup.Provider).Msg("Off-site backup disabled")
		} else {
			e.backups.SetRemote(uploader)
		}
	}
	e.scheduler = backup.NewScheduler(e.backups, settings, logger.Component("scheduler"))
	e.migrator = backup.NewMigrator(e.backups, e.router)

	e.updater = updater.New(cfg.Updates, httpClient, bus, logger.Component("updater"))
	e.wizard = setup.NewWizard(settings, e.router, bus, logger.Component("setup"))

	commands.RegisterShellCommands(e.router, commands.ShellServices{
		Settings: settings,
		Notifier: e.notifier,
		Shell:    e.shell,
		Backups:  e.backups,
	})

	httpTransport := transport.NewHTTPTransport(cfg.Transport.BackendURL, httpClient, logger)
	probeCtx, cancel := context.WithTimeout(ctx, transportProbeTimeout)
	e.transport = transport.Select(probeCtx, cfg.Transport.Mode, e.router, httpTransport, logger)
	cancel()
	e.client = transport.NewClient(e.transport, bus, logger)

	logger.Info().Str("transport", e.transport.Name()).Msg("Engine initialized")
	return e, nil
}

func newBackendClient(cfg config.TransportConfig) *ipc.Client {
	var c *ipc.Client
	if cfg.BackendSocket != "" {
		c = ipc.NewClientWithPath(cfg.BackendSocket)
	} else {
		c = ipc.NewClient(ipc.BackendEndpoint)
	}
	if cfg.TimeoutSeconds > 0 {
		c.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}
	return c
}

// Start launches the backup scheduler and, when configured, the update checker.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.started = true

	e.scheduler.Start(ctx)
	if e.config.UpdatesConfigured() {
		e.updater.Start(ctx)
	}
}

// Stop halts background work and flushes pending window state.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	e.mu.Unlock()

	e.updater.Stop()
	e.scheduler.Stop()
	cancel()

	if err := e.windowState.Flush(); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to save window state")
	}
}

// Config returns the shell configuration.
func (e *Engine) Config() *config.ShellConfig { return e.config }

// Events returns the event bus.
func (e *Engine) Events() *events.EventBus { return e.eventBus }

// Logger returns the engine logger.
func (e *Engine) Logger() *logging.Logger { return e.logger }

// Settings returns the settings store.
func (e *Engine) Settings() *store.Store { return e.settings }

// WindowState returns the window geometry store.
func (e *Engine) WindowState() *store.WindowStateStore { return e.windowState }

// HTTPClient returns the proxy-aware retrying client.
func (e *Engine) HTTPClient() *nethttp.Client { return e.httpClient }

// Router returns the native command router.
func (e *Engine) Router() *commands.Router { return e.router }

// Transport returns the selected transport.
func (e *Engine) Transport() transport.Transport { return e.transport }

// Client returns the renderer-facing API client.
func (e *Engine) Client() *transport.Client { return e.client }

// Notifier returns the notification service.
func (e *Engine) Notifier() *notify.Notifier { return e.notifier }

// Shell returns the URL and file opener.
func (e *Engine) Shell() *dialogs.Shell { return e.shell }

// Backups returns the backup manager.
func (e *Engine) Backups() *backup.Manager { return e.backups }

// Scheduler returns the automatic backup scheduler.
func (e *Engine) Scheduler() *backup.Scheduler { return e.scheduler }

// Migrator returns the legacy database importer.
func (e *Engine) Migrator() *backup.Migrator { return e.migrator }

// Updater returns the update checker.
func (e *Engine) Updater() *updater.Updater { return e.updater }

// Wizard returns the first-run wizard.
func (e *Engine) Wizard() *setup.Wizard { return e.wizard }

// Status describes the engine for the tray and the CLI.
func (e *Engine) Status(windowVisible bool) *ipc.StatusData {
	status := &ipc.StatusData{
		State:         "running",
		Version:       version.Version,
		Transport:     e.transport.Name(),
		WindowVisible: windowVisible,
	}
	if !windowVisible {
		status.State = "hidden"
	}
	if last := e.backups.LastBackup(); !last.IsZero() {
		status.LastBackup = &last
	}
	if result, ok := e.updater.LastResult(); ok && result.HasUpdate {
		status.PendingUpdate = result.LatestVersion
	}
	return status
}
