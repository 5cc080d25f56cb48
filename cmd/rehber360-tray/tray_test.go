package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/ipc"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/menu"
)

type fakeShell struct {
	running bool
	calls   []string
}

func (f *fakeShell) GetStatus(ctx context.Context) (*ipc.StatusData, error) {
	if !f.running {
		return nil, errors.New("not running")
	}
	return &ipc.StatusData{State: "running", Version: "v2.1.0"}, nil
}

func (f *fakeShell) ShowWindow(ctx context.Context) error {
	f.calls = append(f.calls, "show")
	return nil
}

func (f *fakeShell) Navigate(ctx context.Context, path string) error {
	f.calls = append(f.calls, "navigate "+path)
	return nil
}

func (f *fakeShell) MenuAction(ctx context.Context, action string) error {
	f.calls = append(f.calls, "menu "+action)
	return nil
}

func (f *fakeShell) Quit(ctx context.Context) error {
	f.calls = append(f.calls, "quit")
	return nil
}

func newTestTray(shell *fakeShell) (*trayApp, *int, *int) {
	launches, exits := 0, 0
	app := newTrayApp(shell, logging.NewNopLogger())
	app.launch = func() error { launches++; return nil }
	app.exit = func() { exits++ }
	app.tip = func(string) {}
	return app, &launches, &exits
}

func TestTrayActivate(t *testing.T) {
	tests := []struct {
		name string
		item menu.Item
		want string
	}{
		{"show", menu.Item{Action: menu.ActionShow, ShowWindow: true}, "show"},
		{"quick access", menu.Item{Path: "/students", ShowWindow: true}, "navigate /students"},
		{"settings", menu.Item{Action: menu.ActionSettings, ShowWindow: true}, "show,menu settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := &fakeShell{running: true}
			app, _, _ := newTestTray(shell)
			app.activate(tt.item)
			if got := strings.Join(shell.calls, ","); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTrayActivateLaunchesShell(t *testing.T) {
	shell := &fakeShell{}
	app, launches, _ := newTestTray(shell)

	app.activate(menu.Item{Path: "/students", ShowWindow: true})

	if *launches != 1 {
		t.Errorf("Expected shell to be launched once, got %d", *launches)
	}
	if len(shell.calls) != 0 {
		t.Errorf("Expected no IPC calls, got %v", shell.calls)
	}
}

func TestTrayQuit(t *testing.T) {
	shell := &fakeShell{running: true}
	app, _, exits := newTestTray(shell)

	app.activate(menu.Item{Action: menu.ActionQuit})

	if len(shell.calls) != 1 || shell.calls[0] != "quit" {
		t.Errorf("Expected quit call, got %v", shell.calls)
	}
	if *exits != 1 {
		t.Errorf("Expected tray to exit, got %d", *exits)
	}
}

func TestTrayExitsWithShell(t *testing.T) {
	shell := &fakeShell{}
	app, _, exits := newTestTray(shell)

	// Never seen: keep waiting.
	app.refreshStatus()
	app.refreshStatus()
	if *exits != 0 {
		t.Fatalf("Tray should wait for a shell it has not seen")
	}

	shell.running = true
	app.refreshStatus()
	shell.running = false
	app.refreshStatus()
	if *exits != 0 {
		t.Errorf("Tray should tolerate a single missed poll")
	}
	app.refreshStatus()
	if *exits != 1 {
		t.Errorf("Expected tray to exit after the shell went away, got %d", *exits)
	}
}

func TestTooltip(t *testing.T) {
	if !strings.Contains(tooltip(nil), "Çalışmıyor") {
		t.Errorf("Expected not-running tooltip, got %q", tooltip(nil))
	}

	last := time.Date(2026, 3, 1, 2, 0, 0, 0, time.Local)
	text := tooltip(&ipc.StatusData{Version: "v2.1.0", LastBackup: &last, PendingUpdate: "v2.2.0"})
	for _, want := range []string{"v2.1.0", "01.03.2026 02:00", "Güncelleme mevcut: v2.2.0"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected tooltip to contain %q, got %q", want, text)
		}
	}
}
