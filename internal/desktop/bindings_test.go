package desktop

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/core"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

var noopBackend = transport.InvokerFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
})

func newTestApp(t *testing.T, backend transport.Invoker) *App {
	t.Helper()
	t.Setenv(config.HomeEnvVar, t.TempDir())

	cfg := config.NewShellConfig()
	cfg.Updates.Enabled = false
	engine, err := core.NewEngine(context.Background(), cfg, core.Options{Backend: backend})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	t.Cleanup(func() {
		engine.Stop()
		engine.Events().Close()
	})
	return &App{engine: engine, logger: logging.NewNopLogger(), ready: make(chan struct{})}
}

// TestBindingsNoEngine verifies bindings fail cleanly before the engine exists.
func TestBindingsNoEngine(t *testing.T) {
	app := &App{}

	if _, err := app.Invoke("get_all_students", nil); !errors.Is(err, ErrNoEngine) {
		t.Errorf("Expected ErrNoEngine, got %v", err)
	}
	if _, err := app.GetSettings(); !errors.Is(err, ErrNoEngine) {
		t.Errorf("Expected ErrNoEngine, got %v", err)
	}
	if _, err := app.CreateBackup(); !errors.Is(err, ErrNoEngine) {
		t.Errorf("Expected ErrNoEngine, got %v", err)
	}
	if _, err := app.GetWindowBounds(); !errors.Is(err, ErrWindowNotReady) {
		t.Errorf("Expected ErrWindowNotReady, got %v", err)
	}

	result := app.Request("/api/students", "GET", nil)
	if result.Error == nil {
		t.Fatal("Expected error result without engine")
	}
	if result.Data != nil {
		t.Errorf("Expected no data, got %s", result.Data)
	}

	// Window helpers are no-ops before startup.
	app.MinimizeWindow()
	app.ReportFocus(true)
	if app.ToggleFullscreen() {
		t.Error("Expected false without a window")
	}
}

func TestGetAppInfo(t *testing.T) {
	app := newTestApp(t, noopBackend)

	info := app.GetAppInfo()
	if info.Version != version.Version {
		t.Errorf("Expected version %s, got %s", version.Version, info.Version)
	}
	if info.Transport != "native" {
		t.Errorf("Expected native transport, got %s", info.Transport)
	}
}

func TestRequestBinding(t *testing.T) {
	var gotCommand string
	var gotArgs map[string]any
	backend := transport.InvokerFunc(func(_ context.Context, command string, args map[string]any) (json.RawMessage, error) {
		gotCommand, gotArgs = command, args
		if command == "get_student" {
			return nil, &transport.Error{Code: "NOT_FOUND", Message: "Öğrenci bulunamadı", StatusCode: 404}
		}
		return json.RawMessage(`{"data":{"id":"7"}}`), nil
	})
	app := newTestApp(t, backend)

	result := app.Request("/api/students", "post", map[string]any{"name": "Ali"})
	if result.Error != nil {
		t.Fatalf("Unexpected error: %v", result.Error)
	}
	if gotCommand != "create_student" {
		t.Errorf("Expected create_student, got %s", gotCommand)
	}
	if gotArgs["name"] != "Ali" {
		t.Errorf("Expected name arg Ali, got %v", gotArgs["name"])
	}
	if string(result.Data) != `{"data":{"id":"7"}}` {
		t.Errorf("Expected backend response, got %s", result.Data)
	}

	result = app.Request("/api/students/42", "", nil)
	if result.Error == nil {
		t.Fatal("Expected error result")
	}
	if result.Error.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", result.Error.StatusCode)
	}
	if gotArgs["id"] != "42" {
		t.Errorf("Expected id arg 42, got %v", gotArgs["id"])
	}
}

func TestSettingsBindings(t *testing.T) {
	app := newTestApp(t, noopBackend)

	settings, err := app.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	settings.Theme = "dark"
	if err := app.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, _ := app.GetSettings()
	if got.Theme != "dark" {
		t.Errorf("Expected theme dark, got %s", got.Theme)
	}

	settings.Theme = "neon"
	if err := app.SaveSettings(settings); err == nil {
		t.Error("Expected invalid theme to be rejected")
	}
	if err := app.SetTheme("system"); err != nil {
		t.Errorf("SetTheme failed: %v", err)
	}
}

func TestBackupBindings(t *testing.T) {
	app := newTestApp(t, noopBackend)

	dbPath := app.engine.Backups().DatabasePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		t.Fatal(err)
	}
	header := append([]byte("SQLite format 3\x00"), make([]byte, 84)...)
	if err := os.WriteFile(dbPath, header, 0600); err != nil {
		t.Fatal(err)
	}

	info, err := app.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	status, err := app.GetBackupStatus()
	if err != nil {
		t.Fatalf("GetBackupStatus failed: %v", err)
	}
	if len(status.Backups) != 1 || status.Backups[0].Name != info.Name {
		t.Errorf("Expected backup %s in status, got %+v", info.Name, status.Backups)
	}
	if status.LastBackup == "" {
		t.Error("Expected last backup time")
	}

	if err := app.DeleteBackup(info.Name); err != nil {
		t.Fatalf("DeleteBackup failed: %v", err)
	}
	list, _ := app.ListBackups()
	if len(list) != 0 {
		t.Errorf("Expected no backups, got %d", len(list))
	}
}

func TestReadFileBinding(t *testing.T) {
	app := &App{}
	path := filepath.Join(t.TempDir(), "notlar.txt")
	if err := os.WriteFile(path, []byte("merhaba"), 0644); err != nil {
		t.Fatal(err)
	}

	content, err := app.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	decoded, _ := base64.StdEncoding.DecodeString(content.Content)
	if string(decoded) != "merhaba" || content.Size != 7 {
		t.Errorf("Unexpected content %+v", content)
	}

	if _, err := app.ReadFile(filepath.Join(t.TempDir(), "yok.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
