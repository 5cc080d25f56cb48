package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/notify"
	"github.com/rehber360/rehber360-desktop/internal/store"
	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

func TestRouterForwardsUnknownCommands(t *testing.T) {
	var gotCommand string
	backend := transport.InvokerFunc(func(_ context.Context, command string, args map[string]any) (json.RawMessage, error) {
		gotCommand = command
		return json.RawMessage(`{"id":"42"}`), nil
	})
	r := NewRouter(backend, nil)

	raw, err := r.Invoke(context.Background(), "get_student", map[string]any{"id": "42"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if gotCommand != "get_student" || string(raw) != `{"id":"42"}` {
		t.Errorf("Expected forwarded call, got %s %s", gotCommand, raw)
	}
}

func TestRouterWithoutBackend(t *testing.T) {
	r := NewRouter(nil, nil)

	_, err := r.Invoke(context.Background(), "get_all_students", nil)
	if !errors.Is(err, transport.ErrBridgeUnavailable) {
		t.Fatalf("Expected ErrBridgeUnavailable, got %v", err)
	}
	if te := transport.NormalizeError("get_all_students", err); te.Code != transport.CodeBridgeUnavailable {
		t.Errorf("Expected %s, got %s", transport.CodeBridgeUnavailable, te.Code)
	}
	if r.HasBackend() {
		t.Error("Expected no backend")
	}
}

type pingBackend struct {
	transport.InvokerFunc
	err error
}

func (p pingBackend) Ping(context.Context) error { return p.err }

func TestRouterPing(t *testing.T) {
	ctx := context.Background()

	if err := NewRouter(nil, nil).Ping(ctx); !errors.Is(err, transport.ErrBridgeUnavailable) {
		t.Errorf("Expected ErrBridgeUnavailable without backend, got %v", err)
	}

	plain := transport.InvokerFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
		return nil, nil
	})
	if err := NewRouter(plain, nil).Ping(ctx); err != nil {
		t.Errorf("Expected backend without Ping to be reachable, got %v", err)
	}

	down := errors.New("connection refused")
	if err := NewRouter(pingBackend{InvokerFunc: plain, err: down}, nil).Ping(ctx); !errors.Is(err, down) {
		t.Errorf("Expected ping error, got %v", err)
	}
}

func TestRouterLocalTakesPrecedence(t *testing.T) {
	backend := transport.InvokerFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
		t.Error("Backend should not be called for local commands")
		return nil, nil
	})
	r := NewRouter(backend, nil)
	r.Register("echo", func(_ context.Context, args Args) (any, error) {
		return args.String("value"), nil
	})

	raw, err := r.Invoke(context.Background(), "echo", map[string]any{"value": "merhaba"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if string(raw) != `"merhaba"` {
		t.Errorf("Expected \"merhaba\", got %s", raw)
	}
	if !r.IsLocal("echo") || r.IsLocal("get_student") {
		t.Error("IsLocal mismatch")
	}
}

func TestLocalErrorKinds(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Register("needs_path", func(_ context.Context, args Args) (any, error) {
		_, err := args.RequireString("path")
		return nil, err
	})

	_, err := r.Invoke(context.Background(), "needs_path", map[string]any{})
	te := transport.NormalizeError("needs_path", err)
	if te.Kind != transport.KindValidation || te.StatusCode != 400 {
		t.Errorf("Expected Validation/400, got %s/%d", te.Kind, te.StatusCode)
	}
}

type shellFixture struct {
	router   *Router
	settings *store.Store
	backups  *backup.Manager
	sent     []notify.Options
}

func newShellFixture(t *testing.T) *shellFixture {
	t.Helper()
	dir := t.TempDir()

	settings, err := store.Open(filepath.Join(dir, "settings.json"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}

	dbPath := filepath.Join(dir, "rehber360.db")
	if err := os.WriteFile(dbPath, []byte("SQLite format 3\x00data"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	backups := backup.NewManager(dbPath, filepath.Join(dir, "backups"), nil, nil)

	f := &shellFixture{settings: settings, backups: backups}
	notifier := notify.NewNotifier(settings, nil, nil)
	notifier.SetEnabled(true)
	notifier.SetSender(func(opts notify.Options) error {
		f.sent = append(f.sent, opts)
		return nil
	})

	f.router = NewRouter(nil, nil)
	RegisterShellCommands(f.router, ShellServices{
		Settings: settings,
		Notifier: notifier,
		Backups:  backups,
	})
	return f
}

func TestRegisterShellCommands(t *testing.T) {
	f := newShellFixture(t)

	want := []string{
		CmdBackupDatabase, CmdGetAppVersion, CmdGetPlatform, CmdGetSettings,
		CmdListBackups, CmdRestoreDatabase, CmdSaveSettings, CmdSendNativeNotification,
		CmdUpdateAIProvider,
	}
	if got := f.router.LocalCommands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestVersionAndPlatform(t *testing.T) {
	f := newShellFixture(t)

	raw, err := f.router.Invoke(context.Background(), CmdGetAppVersion, nil)
	if err != nil || string(raw) != `"`+version.Version+`"` {
		t.Errorf("Unexpected version %s (%v)", raw, err)
	}
	raw, _ = f.router.Invoke(context.Background(), CmdGetPlatform, nil)
	if string(raw) != `"`+version.Platform()+`"` {
		t.Errorf("Unexpected platform %s", raw)
	}
}

func TestSendNativeNotification(t *testing.T) {
	f := newShellFixture(t)

	raw, err := f.router.Invoke(context.Background(), CmdSendNativeNotification, map[string]any{
		"title": "Hatırlatma",
		"body":  "Görüşme 10:00",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if string(raw) != `{"native":true}` {
		t.Errorf("Expected native delivery, got %s", raw)
	}
	if len(f.sent) != 1 || f.sent[0].Body != "Görüşme 10:00" {
		t.Errorf("Unexpected notifications %+v", f.sent)
	}

	if _, err := f.router.Invoke(context.Background(), CmdSendNativeNotification, map[string]any{}); err == nil {
		t.Error("Expected error without title")
	}
}

func TestSaveSettingsMerges(t *testing.T) {
	f := newShellFixture(t)

	_, err := f.router.Invoke(context.Background(), CmdSaveSettings, map[string]any{
		"settings": map[string]any{"theme": "dark"},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	got := f.settings.Get()
	if got.Theme != store.ThemeDark || got.Language != "tr" {
		t.Errorf("Expected merged settings, got theme=%s language=%s", got.Theme, got.Language)
	}

	_, err = f.router.Invoke(context.Background(), CmdSaveSettings, map[string]any{"theme": "neon"})
	te := transport.NormalizeError(CmdSaveSettings, err)
	if te == nil || te.StatusCode != 400 {
		t.Errorf("Expected validation failure, got %v", err)
	}
	if f.settings.Get().Theme != store.ThemeDark {
		t.Error("Invalid settings must not be persisted")
	}
}

func TestUpdateAIProvider(t *testing.T) {
	f := newShellFixture(t)

	_, err := f.router.Invoke(context.Background(), CmdUpdateAIProvider, map[string]any{
		"provider": "openai",
		"model":    "gpt-4o-mini",
		"api_key":  "sk-test",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	ai := f.settings.AIProvider()
	if ai.Provider != store.ProviderOpenAI || ai.APIKey != "sk-test" {
		t.Errorf("Unexpected provider settings %+v", ai)
	}
}

func TestBackupCommands(t *testing.T) {
	f := newShellFixture(t)
	ctx := context.Background()

	raw, err := f.router.Invoke(ctx, CmdBackupDatabase, nil)
	if err != nil {
		t.Fatalf("backup_database failed: %v", err)
	}
	var info backup.Info
	json.Unmarshal(raw, &info)
	if !strings.HasPrefix(info.Name, backup.FilePrefix) {
		t.Errorf("Unexpected backup name %s", info.Name)
	}

	raw, _ = f.router.Invoke(ctx, CmdListBackups, nil)
	var list []backup.Info
	json.Unmarshal(raw, &list)
	if len(list) != 1 {
		t.Errorf("Expected 1 backup, got %d", len(list))
	}

	if _, err := f.router.Invoke(ctx, CmdRestoreDatabase, map[string]any{"backup_path": info.Path}); err != nil {
		t.Errorf("restore_database failed: %v", err)
	}

	_, err = f.router.Invoke(ctx, CmdRestoreDatabase, map[string]any{"backup_path": filepath.Join(t.TempDir(), "x.db")})
	if !transport.IsNotFound(transport.NormalizeError(CmdRestoreDatabase, err)) {
		t.Errorf("Expected not found, got %v", err)
	}
}
