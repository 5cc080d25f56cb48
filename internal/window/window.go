// Package window implements main window chrome control: minimize, maximize,
// close-to-tray, fullscreen, zoom, and geometry persistence.
package window

import (
	"math"
	"sync"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// Window is the platform window. The desktop package implements it over the
// Wails runtime.
type Window interface {
	Minimise()
	Maximise()
	Unmaximise()
	IsMaximised() bool
	IsMinimised() bool
	Fullscreen()
	UnFullscreen()
	IsFullscreen() bool
	Show()
	Hide()
	Center()
	Size() (width, height int)
	SetSize(width, height int)
	Position() (x, y int)
	SetPosition(x, y int)
	SetZoom(factor float64)
	Reload()
	Quit()
}

// Bounds is a window rectangle.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// zoomBase is the per-level zoom multiplier (level 0 = 100%).
const zoomBase = 1.2

// Manager wraps a Window with shell behaviour. Safe for concurrent use.
type Manager struct {
	win      Window
	settings *store.Store
	state    *store.WindowStateStore
	bus      *events.EventBus
	logger   *logging.Logger

	mu        sync.Mutex
	visible   bool
	zoomLevel float64
}

// NewManager creates a window manager. settings, state and bus may be nil.
func NewManager(win Window, settings *store.Store, state *store.WindowStateStore, bus *events.EventBus, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		win:      win,
		settings: settings,
		state:    state,
		bus:      bus,
		logger:   logger,
		visible:  true,
	}
}

// Minimize minimizes the window.
func (m *Manager) Minimize() {
	m.win.Minimise()
	m.bus.PublishWindowState(events.WindowMinimized)
}

// ToggleMaximize maximizes or restores the window and returns the new state.
func (m *Manager) ToggleMaximize() bool {
	if m.win.IsMaximised() {
		m.win.Unmaximise()
		m.bus.PublishWindowState(events.WindowUnmaximized)
		m.TrackState()
		return false
	}
	m.win.Maximise()
	m.bus.PublishWindowState(events.WindowMaximized)
	m.TrackState()
	return true
}

// Close hides the window to the tray when minimizeToTray is set, otherwise
// quits. Returns true if the window was only hidden.
func (m *Manager) Close() bool {
	if m.minimizeToTray() {
		m.Hide()
		return true
	}
	m.Quit()
	return false
}

// ShouldHideOnClose reports whether a close request should hide instead of quit.
func (m *Manager) ShouldHideOnClose() bool {
	return m.minimizeToTray()
}

func (m *Manager) minimizeToTray() bool {
	if m.settings == nil {
		return false
	}
	return m.settings.Get().MinimizeToTray
}

// Quit flushes pending window state and exits the application.
func (m *Manager) Quit() {
	m.FlushState()
	m.win.Quit()
}

// IsMaximized reports whether the window is maximized.
func (m *Manager) IsMaximized() bool { return m.win.IsMaximised() }

// IsMinimized reports whether the window is minimized.
func (m *Manager) IsMinimized() bool { return m.win.IsMinimised() }

// IsFullscreen reports whether the window is fullscreen.
func (m *Manager) IsFullscreen() bool { return m.win.IsFullscreen() }

// ToggleFullscreen enters or leaves fullscreen and returns the new state.
func (m *Manager) ToggleFullscreen() bool {
	if m.win.IsFullscreen() {
		m.win.UnFullscreen()
		m.bus.PublishWindowState(events.WindowWindowed)
		m.TrackState()
		return false
	}
	m.win.Fullscreen()
	m.bus.PublishWindowState(events.WindowFullscreen)
	m.TrackState()
	return true
}

// Show shows and focuses the window.
func (m *Manager) Show() {
	m.win.Show()
	m.setVisible(true)
	m.bus.PublishWindowState(events.WindowShown)
}

// Hide hides the window.
func (m *Manager) Hide() {
	m.win.Hide()
	m.setVisible(false)
	m.bus.PublishWindowState(events.WindowHidden)
}

// ToggleVisibility shows a hidden window and hides a visible one.
func (m *Manager) ToggleVisibility() {
	if m.Visible() {
		m.Hide()
		return
	}
	m.Show()
}

// Visible reports whether the window is shown (it may still be minimized).
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

func (m *Manager) setVisible(v bool) {
	m.mu.Lock()
	m.visible = v
	m.mu.Unlock()
}

// GetBounds returns the window position and size.
func (m *Manager) GetBounds() Bounds {
	x, y := m.win.Position()
	w, h := m.win.Size()
	return Bounds{X: x, Y: y, Width: w, Height: h}
}

// SetBounds moves and resizes the window. Sizes below the minimum are raised to it.
func (m *Manager) SetBounds(b Bounds) {
	if b.Width < constants.MinWindowWidth {
		b.Width = constants.MinWindowWidth
	}
	if b.Height < constants.MinWindowHeight {
		b.Height = constants.MinWindowHeight
	}
	m.win.SetSize(b.Width, b.Height)
	m.win.SetPosition(b.X, b.Y)
	m.TrackState()
}

// Center centers the window on its screen.
func (m *Manager) Center() {
	m.win.Center()
	m.TrackState()
}

// ZoomIn increases the zoom level by one step and returns the new level.
func (m *Manager) ZoomIn() float64 {
	return m.setZoom(func(l float64) float64 { return l + constants.ZoomStep })
}

// ZoomOut decreases the zoom level by one step and returns the new level.
func (m *Manager) ZoomOut() float64 {
	return m.setZoom(func(l float64) float64 { return l - constants.ZoomStep })
}

// ResetZoom returns to level 0 (100%).
func (m *Manager) ResetZoom() float64 {
	return m.setZoom(func(float64) float64 { return 0 })
}

// ZoomLevel returns the current zoom level.
func (m *Manager) ZoomLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoomLevel
}

func (m *Manager) setZoom(next func(float64) float64) float64 {
	m.mu.Lock()
	m.zoomLevel = next(m.zoomLevel)
	level := m.zoomLevel
	m.mu.Unlock()

	m.win.SetZoom(ZoomFactor(level))
	return level
}

// ZoomFactor converts a zoom level to a scale factor.
func ZoomFactor(level float64) float64 {
	return math.Pow(zoomBase, level)
}

// Reload reloads the renderer.
func (m *Manager) Reload() {
	m.win.Reload()
}

// Focused reports a focus change from the platform.
func (m *Manager) Focused(focused bool) {
	if focused {
		m.bus.PublishWindowState(events.WindowFocused)
		return
	}
	m.bus.PublishWindowState(events.WindowBlurred)
}

// CurrentState reads the window geometry and mode.
func (m *Manager) CurrentState() store.WindowState {
	b := m.GetBounds()
	return store.WindowState{
		X:          b.X,
		Y:          b.Y,
		Width:      b.Width,
		Height:     b.Height,
		Maximized:  m.win.IsMaximised(),
		Fullscreen: m.win.IsFullscreen(),
	}
}

// TrackState schedules a debounced save of the current geometry. Maximized
// and fullscreen windows keep their last normal size on disk.
func (m *Manager) TrackState() {
	if m.state == nil {
		return
	}
	current := m.CurrentState()
	if current.Maximized || current.Fullscreen {
		if saved, ok, _ := m.state.Load(); ok {
			current.X, current.Y = saved.X, saved.Y
			current.Width, current.Height = saved.Width, saved.Height
		}
	}
	if !current.Valid() {
		return
	}
	m.state.SaveDebounced(current)
}

// FlushState writes pending window state and mirrors it into the settings store.
func (m *Manager) FlushState() {
	if m.state != nil {
		if err := m.state.Flush(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to flush window state")
		}
	}
	if m.settings != nil {
		b := m.GetBounds()
		if b.Width >= constants.MinWindowWidth && b.Height >= constants.MinWindowHeight {
			err := m.settings.SetWindowBounds(store.WindowBounds{
				X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
				IsMaximized: m.win.IsMaximised(),
			})
			if err != nil {
				m.logger.Warn().Err(err).Msg("Failed to store window bounds")
			}
		}
	}
}

// Restore applies the saved window state, if any.
func (m *Manager) Restore() {
	if m.state == nil {
		return
	}
	saved, ok, err := m.state.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to load window state")
		return
	}
	if !ok {
		return
	}

	m.win.SetSize(saved.Width, saved.Height)
	m.win.SetPosition(saved.X, saved.Y)
	if saved.Maximized {
		m.win.Maximise()
	}
	if saved.Fullscreen {
		m.win.Fullscreen()
	}
	m.logger.Debug().Int("width", saved.Width).Int("height", saved.Height).Msg("Window state restored")
}

// ResetToDefault applies and saves the default geometry centered on a screen
// of the given size.
func (m *Manager) ResetToDefault(screenWidth, screenHeight int) error {
	if m.win.IsFullscreen() {
		m.win.UnFullscreen()
	}
	if m.win.IsMaximised() {
		m.win.Unmaximise()
	}

	state := store.DefaultWindowState(screenWidth, screenHeight)
	if m.state != nil {
		var err error
		if state, err = m.state.ResetToDefault(screenWidth, screenHeight); err != nil {
			return err
		}
	}
	m.win.SetSize(state.Width, state.Height)
	if screenWidth == 0 || screenHeight == 0 {
		m.win.Center()
		return nil
	}
	m.win.SetPosition(state.X, state.Y)
	return nil
}
