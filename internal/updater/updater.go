// Package updater checks the release feed for newer versions and downloads installers.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

var (
	ErrNotConfigured = errors.New("update feed is not configured")
	ErrNoUpdate      = errors.New("no update available")
	ErrNoAsset       = errors.New("release has no installer for this platform")
	ErrNotDownloaded = errors.New("no update has been downloaded")
)

// Release is the subset of a GitHub release used by the checker.
type Release struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name"`
	HTMLURL     string  `json:"html_url"`
	Body        string  `json:"body"`
	PublishedAt string  `json:"published_at"`
	Prerelease  bool    `json:"prerelease"`
	Assets      []Asset `json:"assets"`
}

// Asset is a downloadable release file.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// CheckResult contains version update information
type CheckResult struct {
	HasUpdate      bool   `json:"hasUpdate"`
	LatestVersion  string `json:"latestVersion,omitempty"`
	CurrentVersion string `json:"currentVersion"`
	ReleaseURL     string `json:"releaseUrl,omitempty"`
	ReleaseDate    string `json:"releaseDate,omitempty"`
	ReleaseNotes   string `json:"releaseNotes,omitempty"`
	DownloadURL    string `json:"downloadUrl,omitempty"`
	AssetName      string `json:"assetName,omitempty"`
	AssetSize      int64  `json:"assetSize,omitempty"`
	CheckedAt      string `json:"checkedAt"`       // ISO timestamp
	Error          string `json:"error,omitempty"` // If check failed
}

// ProgressFunc receives download progress.
type ProgressFunc func(transferred, total int64)

// InstallFunc launches a downloaded installer. The shell quits afterwards.
type InstallFunc func(path string) error

// Updater checks the feed on a schedule and caches the result.
type Updater struct {
	cfg         config.UpdateConfig
	client      *nethttp.Client
	bus         *events.EventBus
	logger      *logging.Logger
	current     string
	goos        string
	downloadDir string
	now         func() time.Time

	initialDelay time.Duration
	interval     time.Duration

	mu         sync.RWMutex
	result     CheckResult
	lastCheck  time.Time
	cacheValid bool
	downloaded string

	install InstallFunc
	quit    func()

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an updater. client is typically the proxy-aware retry client's
// StandardClient().
func New(cfg config.UpdateConfig, client *nethttp.Client, bus *events.EventBus, logger *logging.Logger) *Updater {
	if client == nil {
		client = nethttp.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	interval := constants.UpdateCheckInterval
	if cfg.CheckIntervalMinutes > 0 {
		interval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute
	}
	return &Updater{
		cfg:          cfg,
		client:       client,
		bus:          bus,
		logger:       logger,
		current:      version.Version,
		goos:         runtime.GOOS,
		downloadDir:  filepath.Join(os.TempDir(), constants.AppName+"-update"),
		now:          time.Now,
		initialDelay: constants.UpdateInitialDelay,
		interval:     interval,
		install:      startInstaller,
	}
}

// SetQuit sets the function QuitAndInstall uses to exit the application.
func (u *Updater) SetQuit(quit func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.quit = quit
}

// SetInstaller replaces the installer launcher.
func (u *Updater) SetInstaller(fn InstallFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.install = fn
}

// SetDownloadDir sets where installers are downloaded.
func (u *Updater) SetDownloadDir(dir string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.downloadDir = dir
}

// Configured reports whether update checks are enabled and have a feed URL.
func (u *Updater) Configured() bool {
	return u.cfg.Enabled && u.cfg.FeedURL != ""
}

// Start runs the first check after the initial delay and then periodically.
func (u *Updater) Start(ctx context.Context) {
	if !u.Configured() {
		u.logger.Info().Msg("Auto-update disabled: no release feed configured")
		return
	}

	u.mu.Lock()
	if u.cancel != nil {
		u.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})
	done := u.done
	u.mu.Unlock()

	go func() {
		defer close(done)

		timer := time.NewTimer(u.initialDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		u.Check(ctx, false)

		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				u.Check(ctx, false)
			}
		}
	}()
	u.logger.Info().Dur("interval", u.interval).Msg("Auto-updater initialized")
}

// Stop halts background checks.
func (u *Updater) Stop() {
	u.mu.Lock()
	cancel, done := u.cancel, u.done
	u.cancel = nil
	u.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Check fetches the release feed, or returns the cached result when it is
// younger than the cache TTL and force is false.
func (u *Updater) Check(ctx context.Context, force bool) CheckResult {
	if !u.Configured() {
		return CheckResult{
			CurrentVersion: u.current,
			CheckedAt:      u.now().UTC().Format(time.RFC3339),
			Error:          ErrNotConfigured.Error(),
		}
	}

	u.mu.RLock()
	if !force && u.cacheValid && u.now().Sub(u.lastCheck) < constants.UpdateCacheTTL {
		result := u.result
		u.mu.RUnlock()
		u.logger.Debug().Msg("Using cached version check result")
		return result
	}
	u.mu.RUnlock()

	u.logger.Info().Msg("Checking for updates...")
	u.bus.PublishUpdate(events.EventUpdateChecking, events.UpdateEvent{CurrentVersion: u.current})

	result := CheckResult{
		CurrentVersion: u.current,
		CheckedAt:      u.now().UTC().Format(time.RFC3339),
	}

	release, err := u.fetch(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("Update check failed")
		result.Error = err.Error()
		u.bus.PublishUpdate(events.EventUpdateError, events.UpdateEvent{CurrentVersion: u.current, Error: err})
		// Failed checks are not cached so the next tick retries.
		return result
	}

	result.LatestVersion = release.TagName
	result.ReleaseURL = release.HTMLURL
	result.ReleaseDate = release.PublishedAt
	result.ReleaseNotes = release.Body
	if asset, ok := SelectAsset(release.Assets, u.goos); ok {
		result.DownloadURL = asset.BrowserDownloadURL
		result.AssetName = asset.Name
		result.AssetSize = asset.Size
	}

	if CompareVersions(u.current, release.TagName) < 0 {
		result.HasUpdate = true
		u.logger.Info().Str("current", u.current).Str("latest", release.TagName).Msg("Update available")
		u.bus.PublishUpdate(events.EventUpdateAvailable, events.UpdateEvent{
			Version:        release.TagName,
			CurrentVersion: u.current,
			ReleaseDate:    release.PublishedAt,
			ReleaseNotes:   release.Body,
			DownloadURL:    result.DownloadURL,
		})
	} else {
		u.logger.Info().Str("current", u.current).Msg("Current version is up to date")
		u.bus.PublishUpdate(events.EventUpdateNotAvailable, events.UpdateEvent{
			Version:        release.TagName,
			CurrentVersion: u.current,
		})
	}

	u.mu.Lock()
	u.result = result
	u.lastCheck = u.now()
	u.cacheValid = true
	u.mu.Unlock()

	return result
}

func (u *Updater) fetch(ctx context.Context) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UpdateCheckTimeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, u.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("Rehber360/%s", u.current))
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if release.TagName == "" {
		return nil, errors.New("release feed response has no tag_name")
	}
	return &release, nil
}

// LastResult returns the cached check result and whether there is one.
func (u *Updater) LastResult() (CheckResult, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.result, u.cacheValid
}

// Download fetches the installer of the cached available update. onProgress
// may be nil; progress is also published on the bus.
func (u *Updater) Download(ctx context.Context, onProgress ProgressFunc) (string, error) {
	result, ok := u.LastResult()
	if !ok || !result.HasUpdate {
		return "", ErrNoUpdate
	}
	if result.DownloadURL == "" {
		return "", ErrNoAsset
	}

	u.mu.RLock()
	dir := u.downloadDir
	u.mu.RUnlock()

	dest := filepath.Join(dir, filepath.Base(result.AssetName))
	var lastPercent float64 = -1
	started := u.now()
	err := u.DownloadTo(ctx, result.DownloadURL, dest, func(transferred, total int64) {
		if onProgress != nil {
			onProgress(transferred, total)
		}
		if total <= 0 {
			return
		}
		percent := float64(transferred) * 100 / float64(total)
		if percent-lastPercent < 1 && transferred != total {
			return
		}
		lastPercent = percent
		var bps float64
		if elapsed := u.now().Sub(started).Seconds(); elapsed > 0 {
			bps = float64(transferred) / elapsed
		}
		u.bus.PublishUpdate(events.EventUpdateProgress, events.UpdateEvent{
			Version:        result.LatestVersion,
			Percent:        percent,
			BytesPerSecond: bps,
			Transferred:    transferred,
			Total:          total,
		})
	})
	if err != nil {
		u.logger.Error().Err(err).Str("url", result.DownloadURL).Msg("Update download failed")
		u.bus.PublishUpdate(events.EventUpdateError, events.UpdateEvent{Version: result.LatestVersion, Error: err})
		return "", err
	}

	u.mu.Lock()
	u.downloaded = dest
	u.mu.Unlock()

	u.logger.Info().Str("version", result.LatestVersion).Str("path", dest).Msg("Update downloaded")
	u.bus.PublishUpdate(events.EventUpdateDownloaded, events.UpdateEvent{Version: result.LatestVersion, FilePath: dest})
	return dest, nil
}

// DownloadTo streams url to dest through a temporary file.
func (u *Updater) DownloadTo(ctx context.Context, url, dest string, onProgress ProgressFunc) error {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("Rehber360/%s", u.current))
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return err
	}
	tmp := dest + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0700)
	if err != nil {
		return err
	}

	pw := &progressWriter{total: resp.ContentLength, onProgress: onProgress}
	_, err = io.Copy(io.MultiWriter(f, pw), resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("download failed: %w", err)
	}
	return os.Rename(tmp, dest)
}

type progressWriter struct {
	written    int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.onProgress != nil {
		p.onProgress(p.written, p.total)
	}
	return len(b), nil
}

// Downloaded returns the path of the downloaded installer, if any.
func (u *Updater) Downloaded() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.downloaded
}

// QuitAndInstall launches the downloaded installer and quits the application.
func (u *Updater) QuitAndInstall() error {
	u.mu.RLock()
	path, install, quit := u.downloaded, u.install, u.quit
	u.mu.RUnlock()

	if path == "" {
		return ErrNotDownloaded
	}
	if err := install(path); err != nil {
		u.logger.Error().Err(err).Str("path", path).Msg("Failed to quit and install")
		return err
	}
	u.logger.Info().Msg("Installing update and quitting...")
	if quit != nil {
		quit()
	}
	return nil
}

// SelectAsset picks the installer for goos by file extension.
func SelectAsset(assets []Asset, goos string) (Asset, bool) {
	var exts []string
	switch goos {
	case "windows":
		exts = []string{".exe", ".msi"}
	case "darwin":
		exts = []string{".dmg", ".pkg", ".zip"}
	default:
		exts = []string{".appimage", ".deb", ".rpm", ".tar.gz"}
	}
	for _, ext := range exts {
		for _, a := range assets {
			if strings.HasSuffix(strings.ToLower(a.Name), ext) {
				return a, true
			}
		}
	}
	return Asset{}, false
}

// CompareVersions compares two semantic version strings.
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
// Strips 'v' prefix and compares major.minor.patch numerically.
// Handles development versions (e.g., v2.1.0-dev) by stripping suffix.
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	if idx := strings.Index(v1, "-"); idx != -1 {
		v1 = v1[:idx]
	}
	if idx := strings.Index(v2, "-"); idx != -1 {
		v2 = v2[:idx]
	}

	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	maxLen := len(parts1)
	if len(parts2) > maxLen {
		maxLen = len(parts2)
	}

	for i := 0; i < maxLen; i++ {
		var p1, p2 int
		if i < len(parts1) {
			p1, _ = strconv.Atoi(parts1[i])
		}
		if i < len(parts2) {
			p2, _ = strconv.Atoi(parts2[i])
		}

		if p1 < p2 {
			return -1
		}
		if p1 > p2 {
			return 1
		}
	}
	return 0
}
