package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// WindowState is the persisted main window geometry and mode.
type WindowState struct {
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Maximized  bool `json:"maximized"`
	Fullscreen bool `json:"fullscreen"`
}

// Valid reports whether the state can be applied to a window.
func (w WindowState) Valid() bool {
	return w.Width >= constants.MinWindowWidth && w.Height >= constants.MinWindowHeight
}

// DefaultWindowState returns the reset geometry centered on a screen of the
// given size. A zero screen size leaves the position at 0,0.
func DefaultWindowState(screenWidth, screenHeight int) WindowState {
	state := WindowState{
		Width:  constants.ResetWindowWidth,
		Height: constants.ResetWindowHeight,
	}
	if screenWidth > state.Width {
		state.X = (screenWidth - state.Width) / 2
	}
	if screenHeight > state.Height {
		state.Y = (screenHeight - state.Height) / 2
	}
	return state
}

// WindowStateStore persists WindowState to window-state.json, coalescing
// bursts of resize/move updates into one write.
type WindowStateStore struct {
	path     string
	debounce time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	pending *WindowState
	timer   *time.Timer
}

// NewWindowStateStore creates a store for path with the default debounce.
func NewWindowStateStore(path string, logger *logging.Logger) *WindowStateStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &WindowStateStore{
		path:     path,
		debounce: constants.WindowStateSaveDebounce,
		logger:   logger,
	}
}

// SetDebounce changes the debounce interval.
func (w *WindowStateStore) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Load returns the saved state, or ok=false if none is saved or it is unusable.
func (w *WindowStateStore) Load() (WindowState, bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return WindowState{}, false, nil
		}
		return WindowState{}, false, fmt.Errorf("failed to read window state: %w", err)
	}

	var state WindowState
	if err := json.Unmarshal(data, &state); err != nil {
		return WindowState{}, false, fmt.Errorf("failed to parse window state: %w", err)
	}
	if !state.Valid() {
		return WindowState{}, false, nil
	}
	return state, true, nil
}

// Save writes state immediately, cancelling any pending debounced save.
func (w *WindowStateStore) Save(state WindowState) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.mu.Unlock()

	return writeJSON(w.path, state)
}

// SaveDebounced schedules a save; each call restarts the delay and only the
// latest state is written.
func (w *WindowStateStore) SaveDebounced(state WindowState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = &state
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushPending)
}

// Flush writes any pending debounced state now. Called on shutdown.
func (w *WindowStateStore) Flush() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	if pending == nil {
		return nil
	}
	return writeJSON(w.path, *pending)
}

func (w *WindowStateStore) flushPending() {
	if err := w.Flush(); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to save window state")
	}
}

// Clear removes the saved state.
func (w *WindowStateStore) Clear() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.mu.Unlock()

	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear window state: %w", err)
	}
	return nil
}

// ResetToDefault saves and returns the default geometry centered on the screen.
func (w *WindowStateStore) ResetToDefault(screenWidth, screenHeight int) (WindowState, error) {
	state := DefaultWindowState(screenWidth, screenHeight)
	if err := w.Save(state); err != nil {
		return WindowState{}, err
	}
	return state, nil
}
