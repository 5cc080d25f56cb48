package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/rehber360/rehber360-desktop/internal/pathutil"
)

// ShellConfig represents shell.conf, the operator-level configuration of the desktop shell.
// User preferences (theme, notifications, backup schedule) live in the settings store instead.
//
// INI format:
//
//	[transport]
//	mode = native
//	backend_socket =
//	backend_url = http://localhost:5000
//	timeout_seconds = 30
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	no_proxy = localhost,127.0.0.1
//
//	[updates]
//	enabled = true
//	feed_url = https://api.github.com/repos/rehber360/rehber360-desktop/releases/latest
//	check_interval_minutes = 120
//
//	[backup]
//	directory =
//
//	[remote_backup]
//	provider = none
//	bucket =
//	prefix = rehber360/
//	region =
//	container =
//
//	[devserver]
//	addr = 127.0.0.1:5000
//	allowed_origin = http://localhost:5173
//
//	[logging]
//	level = info
//	file = true
type ShellConfig struct {
	Transport    TransportConfig
	Proxy        ProxyConfig
	Updates      UpdateConfig
	Backup       BackupConfig
	RemoteBackup RemoteBackupConfig
	DevServer    DevServerConfig
	Logging      LoggingConfig

	// DevMode enables developer tools in the menu. Only set from the environment.
	DevMode bool
}

// Transport modes
const (
	TransportNative = "native"
	TransportHTTP   = "http"
	TransportAuto   = "auto"
)

// Proxy modes
const (
	ProxyNone   = "no-proxy"
	ProxySystem = "system"
	ProxyBasic  = "basic"
	ProxyNTLM   = "ntlm"
)

// Remote backup providers
const (
	RemoteNone  = "none"
	RemoteS3    = "s3"
	RemoteAzure = "azure"
)

// TransportConfig selects how renderer requests reach the backend.
type TransportConfig struct {
	// Mode is native (local IPC), http, or auto (native if the socket answers, else http).
	Mode string `ini:"mode"`

	// BackendSocket overrides the backend IPC socket/pipe path.
	BackendSocket string `ini:"backend_socket"`

	// BackendURL is the base URL used by the HTTP transport.
	BackendURL string `ini:"backend_url"`

	// TimeoutSeconds is the default request timeout.
	TimeoutSeconds int `ini:"timeout_seconds"`
}

// ProxyConfig configures the outbound HTTP proxy (HTTP transport and update checks).
type ProxyConfig struct {
	Mode    string `ini:"mode"`
	Host    string `ini:"host"`
	Port    int    `ini:"port"`
	User    string `ini:"user"`
	NoProxy string `ini:"no_proxy"`

	// Password is never written to disk. Read from REHBER360_PROXY_PASSWORD or prompted.
	Password string `ini:"-"`
}

// UpdateConfig configures the release feed checker.
type UpdateConfig struct {
	Enabled              bool   `ini:"enabled"`
	FeedURL              string `ini:"feed_url"`
	CheckIntervalMinutes int    `ini:"check_interval_minutes"`
}

// BackupConfig overrides where backups are written.
type BackupConfig struct {
	Directory string `ini:"directory"`
}

// RemoteBackupConfig configures the optional off-site backup copy.
type RemoteBackupConfig struct {
	Provider  string `ini:"provider"`
	Bucket    string `ini:"bucket"`
	Prefix    string `ini:"prefix"`
	Region    string `ini:"region"`
	Container string `ini:"container"`

	// AzureConnectionString is only read from REHBER360_AZURE_CONNECTION_STRING.
	AzureConnectionString string `ini:"-"`
}

// DevServerConfig configures the browser-mode development bridge.
type DevServerConfig struct {
	Addr          string `ini:"addr"`
	AllowedOrigin string `ini:"allowed_origin"`
}

// LoggingConfig configures log verbosity and the rotating log file.
type LoggingConfig struct {
	Level string `ini:"level"`
	File  bool   `ini:"file"`
}

// Default values
const (
	DefaultBackendURL     = "http://localhost:5000"
	DefaultUpdateFeedURL  = "https://api.github.com/repos/rehber360/rehber360-desktop/releases/latest"
	DefaultDevServerAddr  = "127.0.0.1:5000"
	DefaultAllowedOrigin  = "http://localhost:5173"
	DefaultProxyPort      = 8080
	DefaultTimeoutSeconds = 30
)

// ShellConfig validation errors
var (
	ErrInvalidTransportMode  = errors.New("transport mode must be native, http or auto")
	ErrInvalidBackendURL     = errors.New("backend_url must be an absolute http(s) URL")
	ErrInvalidTimeout        = errors.New("timeout_seconds must be between 1 and 600")
	ErrInvalidProxyMode      = errors.New("proxy mode must be no-proxy, system, basic or ntlm")
	ErrProxyHostRequired     = errors.New("proxy host is required for basic and ntlm modes")
	ErrInvalidCheckInterval  = errors.New("check_interval_minutes must be between 5 and 10080")
	ErrInvalidRemoteProvider = errors.New("remote_backup provider must be none, s3 or azure")
	ErrRemoteBucketRequired  = errors.New("remote_backup bucket is required for s3")
	ErrRemoteContainer       = errors.New("remote_backup container is required for azure")
	ErrInvalidLogLevel       = errors.New("logging level must be debug, info, warn or error")
)

// NewShellConfig creates a ShellConfig with default values.
func NewShellConfig() *ShellConfig {
	return &ShellConfig{
		Transport: TransportConfig{
			Mode:           TransportNative,
			BackendURL:     DefaultBackendURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Proxy: ProxyConfig{
			Mode: ProxyNone,
			Port: DefaultProxyPort,
		},
		Updates: UpdateConfig{
			Enabled:              true,
			FeedURL:              DefaultUpdateFeedURL,
			CheckIntervalMinutes: 120,
		},
		RemoteBackup: RemoteBackupConfig{
			Provider: RemoteNone,
			Prefix:   "rehber360/",
		},
		DevServer: DevServerConfig{
			Addr:          DefaultDevServerAddr,
			AllowedOrigin: DefaultAllowedOrigin,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
	}
}

// Load loads configuration from shell.conf.
// If path is empty, uses the default path.
// If the file doesn't exist, returns a config with default values and no error.
// Environment overrides are applied last.
func Load(path string) (*ShellConfig, error) {
	cfg := NewShellConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		iniFile, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
		}
		cfg.readINI(iniFile)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

func (cfg *ShellConfig) readINI(f *ini.File) {
	t := f.Section("transport")
	cfg.Transport.Mode = strings.ToLower(t.Key("mode").MustString(TransportNative))
	cfg.Transport.BackendSocket = t.Key("backend_socket").String()
	cfg.Transport.BackendURL = t.Key("backend_url").MustString(DefaultBackendURL)
	cfg.Transport.TimeoutSeconds = t.Key("timeout_seconds").MustInt(DefaultTimeoutSeconds)

	p := f.Section("proxy")
	cfg.Proxy.Mode = strings.ToLower(p.Key("mode").MustString(ProxyNone))
	cfg.Proxy.Host = p.Key("host").String()
	cfg.Proxy.Port = p.Key("port").MustInt(DefaultProxyPort)
	cfg.Proxy.User = p.Key("user").String()
	cfg.Proxy.NoProxy = p.Key("no_proxy").String()

	u := f.Section("updates")
	cfg.Updates.Enabled = u.Key("enabled").MustBool(true)
	cfg.Updates.FeedURL = u.Key("feed_url").MustString(DefaultUpdateFeedURL)
	cfg.Updates.CheckIntervalMinutes = u.Key("check_interval_minutes").MustInt(120)

	cfg.Backup.Directory = f.Section("backup").Key("directory").String()

	r := f.Section("remote_backup")
	cfg.RemoteBackup.Provider = strings.ToLower(r.Key("provider").MustString(RemoteNone))
	cfg.RemoteBackup.Bucket = r.Key("bucket").String()
	cfg.RemoteBackup.Prefix = r.Key("prefix").MustString("rehber360/")
	cfg.RemoteBackup.Region = r.Key("region").String()
	cfg.RemoteBackup.Container = r.Key("container").String()

	d := f.Section("devserver")
	cfg.DevServer.Addr = d.Key("addr").MustString(DefaultDevServerAddr)
	cfg.DevServer.AllowedOrigin = d.Key("allowed_origin").MustString(DefaultAllowedOrigin)

	l := f.Section("logging")
	cfg.Logging.Level = strings.ToLower(l.Key("level").MustString("info"))
	cfg.Logging.File = l.Key("file").MustBool(true)
}

// Save saves configuration to shell.conf.
// If path is empty, uses the default path.
// Creates parent directories if they don't exist.
func Save(cfg *ShellConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"transport", [][2]string{
			{"mode", cfg.Transport.Mode},
			{"backend_socket", cfg.Transport.BackendSocket},
			{"backend_url", cfg.Transport.BackendURL},
			{"timeout_seconds", strconv.Itoa(cfg.Transport.TimeoutSeconds)},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.Proxy.Mode},
			{"host", cfg.Proxy.Host},
			{"port", strconv.Itoa(cfg.Proxy.Port)},
			{"user", cfg.Proxy.User},
			{"no_proxy", cfg.Proxy.NoProxy},
		}},
		{"updates", [][2]string{
			{"enabled", strconv.FormatBool(cfg.Updates.Enabled)},
			{"feed_url", cfg.Updates.FeedURL},
			{"check_interval_minutes", strconv.Itoa(cfg.Updates.CheckIntervalMinutes)},
		}},
		{"backup", [][2]string{
			{"directory", cfg.Backup.Directory},
		}},
		{"remote_backup", [][2]string{
			{"provider", cfg.RemoteBackup.Provider},
			{"bucket", cfg.RemoteBackup.Bucket},
			{"prefix", cfg.RemoteBackup.Prefix},
			{"region", cfg.RemoteBackup.Region},
			{"container", cfg.RemoteBackup.Container},
		}},
		{"devserver", [][2]string{
			{"addr", cfg.DevServer.Addr},
			{"allowed_origin", cfg.DevServer.AllowedOrigin},
		}},
		{"logging", [][2]string{
			{"level", cfg.Logging.Level},
			{"file", strconv.FormatBool(cfg.Logging.File)},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Use temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks if the shell configuration is valid.
func (cfg *ShellConfig) Validate() error {
	switch cfg.Transport.Mode {
	case TransportNative, TransportHTTP, TransportAuto:
	default:
		return ErrInvalidTransportMode
	}
	if cfg.Transport.Mode != TransportNative {
		u, err := url.Parse(cfg.Transport.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidBackendURL
		}
	}
	if cfg.Transport.TimeoutSeconds < 1 || cfg.Transport.TimeoutSeconds > 600 {
		return ErrInvalidTimeout
	}

	switch cfg.Proxy.Mode {
	case ProxyNone, ProxySystem, "":
	case ProxyBasic, ProxyNTLM:
		if strings.TrimSpace(cfg.Proxy.Host) == "" {
			return ErrProxyHostRequired
		}
	default:
		return ErrInvalidProxyMode
	}

	if cfg.Updates.Enabled {
		if cfg.Updates.CheckIntervalMinutes < 5 || cfg.Updates.CheckIntervalMinutes > 10080 {
			return ErrInvalidCheckInterval
		}
	}

	switch cfg.RemoteBackup.Provider {
	case RemoteNone, "":
	case RemoteS3:
		if cfg.RemoteBackup.Bucket == "" {
			return ErrRemoteBucketRequired
		}
	case RemoteAzure:
		if cfg.RemoteBackup.Container == "" {
			return ErrRemoteContainer
		}
	default:
		return ErrInvalidRemoteProvider
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// UpdatesConfigured reports whether background update checks should run.
func (cfg *ShellConfig) UpdatesConfigured() bool {
	return cfg.Updates.Enabled && strings.TrimSpace(cfg.Updates.FeedURL) != ""
}

// BackupDirectory returns the configured backup directory or the default one.
func (cfg *ShellConfig) BackupDirectory() string {
	if cfg.Backup.Directory != "" {
		return pathutil.MustResolve(cfg.Backup.Directory)
	}
	return BackupDirectory()
}

// Environment variables applied over shell.conf.
const (
	EnvTransport        = "REHBER360_TRANSPORT"
	EnvBackendURL       = "REHBER360_BACKEND_URL"
	EnvBackendSocket    = "REHBER360_BACKEND_SOCKET"
	EnvUpdateFeed       = "REHBER360_UPDATE_FEED"
	EnvLogLevel         = "REHBER360_LOG_LEVEL"
	EnvDevMode          = "REHBER360_DEV"
	EnvProxyPassword    = "REHBER360_PROXY_PASSWORD"
	EnvAzureConnString  = "REHBER360_AZURE_CONNECTION_STRING"
	EnvDevServerAddress = "REHBER360_DEVSERVER_ADDR"
)

// LoadDotEnv loads the first .env file found among the given locations
// (defaults: ./.env, then the app data directory). Existing environment
// variables are never overwritten. Returns the file that was loaded, or "".
func LoadDotEnv(locations ...string) string {
	if len(locations) == 0 {
		locations = []string{
			".env",
			filepath.Join(AppDataDirectory(), ".env"),
		}
	}
	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			return location
		}
	}
	return ""
}

// ApplyEnv overlays REHBER360_* environment variables.
func (cfg *ShellConfig) ApplyEnv() {
	if v := os.Getenv(EnvTransport); v != "" {
		cfg.Transport.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Transport.BackendURL = v
	}
	if v := os.Getenv(EnvBackendSocket); v != "" {
		cfg.Transport.BackendSocket = v
	}
	if v, ok := os.LookupEnv(EnvUpdateFeed); ok {
		cfg.Updates.FeedURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDevMode); v != "" {
		cfg.DevMode, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv(EnvProxyPassword); v != "" {
		cfg.Proxy.Password = v
	}
	if v := os.Getenv(EnvAzureConnString); v != "" {
		cfg.RemoteBackup.AzureConnectionString = v
	}
	if v := os.Getenv(EnvDevServerAddress); v != "" {
		cfg.DevServer.Addr = v
	}
}
