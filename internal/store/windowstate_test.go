package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWindowStateSaveLoad(t *testing.T) {
	ws := NewWindowStateStore(filepath.Join(t.TempDir(), "window-state.json"), nil)

	if _, ok, err := ws.Load(); ok || err != nil {
		t.Fatalf("Expected no saved state, got ok=%v err=%v", ok, err)
	}

	want := WindowState{X: 10, Y: 20, Width: 1300, Height: 850, Maximized: true}
	if err := ws.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := ws.Load()
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestWindowStateIgnoresTooSmall(t *testing.T) {
	ws := NewWindowStateStore(filepath.Join(t.TempDir(), "window-state.json"), nil)
	ws.Save(WindowState{Width: 200, Height: 100})

	if _, ok, _ := ws.Load(); ok {
		t.Error("Expected undersized state to be ignored")
	}
}

func TestWindowStateDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window-state.json")
	ws := NewWindowStateStore(path, nil)
	ws.SetDebounce(50 * time.Millisecond)

	for w := 1100; w <= 1150; w += 10 {
		ws.SaveDebounced(WindowState{Width: w, Height: 800})
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected no write before debounce elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok, _ := ws.Load(); ok {
			if got.Width != 1150 {
				t.Errorf("Expected last width 1150, got %d", got.Width)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Expected debounced state to be written")
}

func TestWindowStateFlushAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window-state.json")
	ws := NewWindowStateStore(path, nil)
	ws.SetDebounce(time.Hour)

	ws.SaveDebounced(WindowState{Width: 1200, Height: 900})
	if err := ws.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got, ok, _ := ws.Load(); !ok || got.Width != 1200 {
		t.Errorf("Expected flushed state, got %+v ok=%v", got, ok)
	}

	if err := ws.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected state file removed")
	}
	if err := ws.Clear(); err != nil {
		t.Errorf("Expected Clear on missing file to succeed, got %v", err)
	}
}

func TestResetToDefault(t *testing.T) {
	ws := NewWindowStateStore(filepath.Join(t.TempDir(), "window-state.json"), nil)

	state, err := ws.ResetToDefault(1920, 1080)
	if err != nil {
		t.Fatalf("ResetToDefault failed: %v", err)
	}
	if state.Width != 1400 || state.Height != 900 {
		t.Errorf("Expected 1400x900, got %dx%d", state.Width, state.Height)
	}
	if state.X != 260 || state.Y != 90 {
		t.Errorf("Expected centered at 260,90, got %d,%d", state.X, state.Y)
	}

	small := DefaultWindowState(1280, 720)
	if small.X != 0 || small.Y != 0 {
		t.Errorf("Expected 0,0 on a small screen, got %d,%d", small.X, small.Y)
	}
}
