package constants

import (
	"time"
)

// Application identity
const (
	// AppName is used for the app data directory and window title.
	AppName = "Rehber360"

	// AppID is the lower-case identifier used for file names and sockets.
	AppID = "rehber360"

	// TrayTooltip is shown when hovering the tray icon.
	TrayTooltip = "Rehber360 - Öğrenci Rehberlik Sistemi"

	// DocsURL and ChangelogURL are opened from the help menu.
	DocsURL      = "https://rehber360.com/docs"
	ChangelogURL = "https://rehber360.com/changelog"
)

// File names inside the app data directory
const (
	DatabaseFileName    = "rehber360.db"
	StoreFileName       = "settings.json"
	WindowStateFileName = "window-state.json"
	ConfigFileName      = "shell.conf"
	BackupDirName       = "backups"
	LogDirName          = "logs"
	LogFileName         = "main.log"
)

// Window geometry
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 800
	MinWindowWidth      = 1024
	MinWindowHeight     = 768

	// ResetWindowWidth/Height are used by "reset to default" which also centers.
	ResetWindowWidth  = 1400
	ResetWindowHeight = 900

	// ZoomStep is the zoom level delta applied by the view menu.
	ZoomStep = 0.5
)

// Timing
const (
	// DefaultRequestTimeout applies to transport requests without an explicit timeout.
	DefaultRequestTimeout = 30 * time.Second

	// WindowStateSaveDebounce delays window-state writes while the user drags or resizes.
	WindowStateSaveDebounce = 500 * time.Millisecond

	// UpdateInitialDelay is the wait before the first update check after startup.
	UpdateInitialDelay = 5 * time.Second

	// UpdateCheckInterval is the period between background update checks.
	UpdateCheckInterval = 2 * time.Hour

	// UpdateCacheTTL bounds how often the release feed is actually fetched.
	UpdateCacheTTL = 24 * time.Hour

	// UpdateCheckTimeout bounds a single release feed request.
	UpdateCheckTimeout = 10 * time.Second

	// IPCDefaultTimeout bounds a single IPC round-trip.
	IPCDefaultTimeout = 10 * time.Second

	// TrayRefreshInterval is how often the tray polls the shell for status.
	TrayRefreshInterval = 5 * time.Second

	// EventThrottleInterval limits how often download progress is forwarded to the UI.
	EventThrottleInterval = 100 * time.Millisecond

	// BackupSchedulerTick is the resolution of the auto-backup scheduler.
	BackupSchedulerTick = time.Minute
)

// Event bus
const (
	// EventBusDefaultBuffer is the per-subscriber channel size.
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer caps caller-provided buffer sizes.
	EventBusMaxBuffer = 10000
)

// HTTP client
const (
	HTTPDialTimeout           = 30 * time.Second
	HTTPDialKeepAlive         = 30 * time.Second
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 15 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second

	// RetryMax is the number of retries for the retryable HTTP client.
	RetryMax = 3

	// RetryWaitMin/RetryWaitMax bound the exponential backoff.
	RetryWaitMin = 200 * time.Millisecond
	RetryWaitMax = 5 * time.Second
)

// Limits
const (
	// MaxLastOpenedPages caps the recently-opened pages list in the store.
	MaxLastOpenedPages = 10

	// NotificationLogSize is the number of notifications kept in memory.
	NotificationLogSize = 100

	// DefaultMaxBackups is the retention used when the store has none.
	DefaultMaxBackups = 7

	// MaxIPCMessageSize bounds a single newline-delimited IPC message.
	MaxIPCMessageSize = 16 * 1024 * 1024
)
