package updater

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/events"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"v2.1.0", "v2.1.0", 0},
		{"v2.1.0", "v2.2.0", -1},
		{"2.10.0", "v2.9.9", 1},
		{"v2.1.0-dev", "v2.1.0", 0},
		{"v2.1", "v2.1.1", -1},
		{"v3.0.0", "v2.99.99", 1},
	}

	for _, tt := range tests {
		if got := CompareVersions(tt.v1, tt.v2); got != tt.want {
			t.Errorf("CompareVersions(%q, %q): Expected %d, got %d", tt.v1, tt.v2, tt.want, got)
		}
	}
}

func TestSelectAsset(t *testing.T) {
	assets := []Asset{
		{Name: "Rehber360-2.2.0.dmg"},
		{Name: "Rehber360-Setup-2.2.0.exe"},
		{Name: "Rehber360-2.2.0.AppImage"},
		{Name: "latest.yml"},
	}

	for goos, want := range map[string]string{
		"windows": "Rehber360-Setup-2.2.0.exe",
		"darwin":  "Rehber360-2.2.0.dmg",
		"linux":   "Rehber360-2.2.0.AppImage",
	} {
		got, ok := SelectAsset(assets, goos)
		if !ok || got.Name != want {
			t.Errorf("%s: Expected %s, got %s", goos, want, got.Name)
		}
	}

	if _, ok := SelectAsset([]Asset{{Name: "notes.txt"}}, "linux"); ok {
		t.Error("Expected no asset")
	}
}

type feed struct {
	server   *httptest.Server
	requests atomic.Int32
	tag      string
	status   int
}

func newFeed(t *testing.T, tag string) *feed {
	t.Helper()
	f := &feed{tag: tag, status: nethttp.StatusOK}
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/releases/latest", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		f.requests.Add(1)
		if f.status != nethttp.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/r","published_at":"2026-09-01T10:00:00Z","body":"Hata düzeltmeleri","assets":[{"name":"Rehber360-%s.AppImage","browser_download_url":"%s/download/app","size":4096}]}`,
			f.tag, strings.TrimPrefix(f.tag, "v"), "http://"+r.Host)
	})
	mux.HandleFunc("/download/app", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte(strings.Repeat("x", 4096)))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestUpdater(t *testing.T, f *feed, bus *events.EventBus) *Updater {
	t.Helper()
	u := New(config.UpdateConfig{Enabled: true, FeedURL: f.server.URL + "/releases/latest"}, f.server.Client(), bus, nil)
	u.current = "v2.1.0"
	u.goos = "linux"
	u.SetDownloadDir(t.TempDir())
	return u
}

func TestCheckAvailable(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	available := bus.Subscribe(events.EventUpdateAvailable)

	f := newFeed(t, "v2.2.0")
	u := newTestUpdater(t, f, bus)

	result := u.Check(context.Background(), false)
	if result.Error != "" {
		t.Fatalf("Check failed: %s", result.Error)
	}
	if !result.HasUpdate || result.LatestVersion != "v2.2.0" || result.AssetName != "Rehber360-2.2.0.AppImage" {
		t.Errorf("Unexpected result %+v", result)
	}

	select {
	case ev := <-available:
		if ev.(*events.UpdateEvent).Version != "v2.2.0" {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected update:available event")
	}
}

func TestCheckUsesCache(t *testing.T) {
	f := newFeed(t, "v2.1.0")
	u := newTestUpdater(t, f, nil)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return now }

	u.Check(context.Background(), false)
	u.Check(context.Background(), false)
	if got := f.requests.Load(); got != 1 {
		t.Errorf("Expected 1 feed request, got %d", got)
	}

	u.Check(context.Background(), true)
	if got := f.requests.Load(); got != 2 {
		t.Errorf("Expected forced check to refetch, got %d", got)
	}

	now = now.Add(25 * time.Hour)
	result := u.Check(context.Background(), false)
	if got := f.requests.Load(); got != 3 {
		t.Errorf("Expected refetch after TTL, got %d", got)
	}
	if result.HasUpdate {
		t.Error("Expected no update for equal versions")
	}
}

func TestCheckErrorNotCached(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	errs := bus.Subscribe(events.EventUpdateError)

	f := newFeed(t, "v2.2.0")
	f.status = nethttp.StatusInternalServerError
	u := newTestUpdater(t, f, bus)

	if result := u.Check(context.Background(), false); result.Error == "" {
		t.Error("Expected error result")
	}
	if _, ok := u.LastResult(); ok {
		t.Error("Failed check must not be cached")
	}
	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Fatal("Expected update:error event")
	}
}

func TestCheckNotConfigured(t *testing.T) {
	u := New(config.UpdateConfig{Enabled: false}, nil, nil, nil)
	if u.Configured() {
		t.Error("Expected unconfigured updater")
	}
	if result := u.Check(context.Background(), true); result.Error != ErrNotConfigured.Error() {
		t.Errorf("Expected %q, got %q", ErrNotConfigured.Error(), result.Error)
	}
}

func TestDownloadAndInstall(t *testing.T) {
	bus := events.NewEventBus(200)
	defer bus.Close()
	downloaded := bus.Subscribe(events.EventUpdateDownloaded)

	f := newFeed(t, "v2.2.0")
	u := newTestUpdater(t, f, bus)

	if _, err := u.Download(context.Background(), nil); !errors.Is(err, ErrNoUpdate) {
		t.Errorf("Expected ErrNoUpdate before check, got %v", err)
	}
	if err := u.QuitAndInstall(); !errors.Is(err, ErrNotDownloaded) {
		t.Errorf("Expected ErrNotDownloaded, got %v", err)
	}

	u.Check(context.Background(), false)

	var last int64
	path, err := u.Download(context.Background(), func(transferred, total int64) { last = transferred })
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if last != 4096 {
		t.Errorf("Expected final progress 4096, got %d", last)
	}
	if st, err := os.Stat(path); err != nil || st.Size() != 4096 {
		t.Errorf("Expected 4096-byte installer at %s", path)
	}
	select {
	case <-downloaded:
	case <-time.After(time.Second):
		t.Fatal("Expected update:downloaded event")
	}

	var installed string
	quit := false
	u.SetInstaller(func(p string) error {
		installed = p
		return nil
	})
	u.SetQuit(func() { quit = true })
	if err := u.QuitAndInstall(); err != nil {
		t.Fatalf("QuitAndInstall failed: %v", err)
	}
	if installed != path || !quit {
		t.Errorf("Expected install of %s and quit, got %s %v", path, installed, quit)
	}
}

func TestStartStop(t *testing.T) {
	f := newFeed(t, "v2.1.0")
	u := newTestUpdater(t, f, nil)
	u.initialDelay = 5 * time.Millisecond
	u.interval = time.Hour

	u.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for f.requests.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	u.Stop()

	if f.requests.Load() != 1 {
		t.Errorf("Expected one check after the initial delay, got %d", f.requests.Load())
	}
}
