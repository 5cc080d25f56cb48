package desktop

import (
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rehber360/rehber360-desktop/internal/window"
)

// WindowStatusDTO reports the window flags shown in the custom title bar.
type WindowStatusDTO struct {
	Maximized  bool    `json:"maximized"`
	Minimized  bool    `json:"minimized"`
	Fullscreen bool    `json:"fullscreen"`
	Visible    bool    `json:"visible"`
	ZoomLevel  float64 `json:"zoomLevel"`
}

// MinimizeWindow minimizes the main window.
func (a *App) MinimizeWindow() {
	if a.window != nil {
		a.window.Minimize()
	}
}

// ToggleMaximizeWindow maximizes or restores the window and returns the new state.
func (a *App) ToggleMaximizeWindow() bool {
	if a.window == nil {
		return false
	}
	return a.window.ToggleMaximize()
}

// CloseWindow closes the window, hiding it to the tray when configured.
func (a *App) CloseWindow() {
	if a.window != nil {
		a.window.Close()
	}
}

// ToggleFullscreen switches fullscreen and returns the new state.
func (a *App) ToggleFullscreen() bool {
	if a.window == nil {
		return false
	}
	return a.window.ToggleFullscreen()
}

// GetWindowStatus returns the current window flags.
func (a *App) GetWindowStatus() WindowStatusDTO {
	if a.window == nil {
		return WindowStatusDTO{}
	}
	return WindowStatusDTO{
		Maximized:  a.window.IsMaximized(),
		Minimized:  a.window.IsMinimized(),
		Fullscreen: a.window.IsFullscreen(),
		Visible:    a.window.Visible(),
		ZoomLevel:  a.window.ZoomLevel(),
	}
}

// ShowWindow shows and focuses the window.
func (a *App) ShowWindow() {
	if a.window != nil {
		a.window.Show()
	}
}

// HideWindow hides the window.
func (a *App) HideWindow() {
	if a.window != nil {
		a.window.Hide()
	}
}

// GetWindowBounds returns the window rectangle.
func (a *App) GetWindowBounds() (window.Bounds, error) {
	if a.window == nil {
		return window.Bounds{}, ErrWindowNotReady
	}
	return a.window.GetBounds(), nil
}

// SetWindowBounds moves and resizes the window.
func (a *App) SetWindowBounds(b window.Bounds) error {
	if a.window == nil {
		return ErrWindowNotReady
	}
	a.window.SetBounds(b)
	return nil
}

// CenterWindow centers the window on the current screen.
func (a *App) CenterWindow() {
	if a.window != nil {
		a.window.Center()
	}
}

// ZoomIn increases the page zoom and returns the new level.
func (a *App) ZoomIn() float64 {
	if a.window == nil {
		return 0
	}
	return a.window.ZoomIn()
}

// ZoomOut decreases the page zoom and returns the new level.
func (a *App) ZoomOut() float64 {
	if a.window == nil {
		return 0
	}
	return a.window.ZoomOut()
}

// ResetZoom restores 100% zoom.
func (a *App) ResetZoom() float64 {
	if a.window == nil {
		return 0
	}
	return a.window.ResetZoom()
}

// ReloadWindow reloads the renderer.
func (a *App) ReloadWindow() {
	if a.window != nil {
		a.window.Reload()
	}
}

// ReportFocus is called by the renderer on window focus and blur.
func (a *App) ReportFocus(focused bool) {
	if a.window != nil {
		a.window.Focused(focused)
	}
}

// TrackWindowState records the current geometry. The renderer calls it on
// resize and move; writes are debounced.
func (a *App) TrackWindowState() {
	if a.window != nil {
		a.window.TrackState()
	}
}

// ResetWindowState restores the default size centered on the current screen.
func (a *App) ResetWindowState() error {
	if a.window == nil {
		return ErrWindowNotReady
	}
	width, height := 0, 0
	if screens, err := runtime.ScreenGetAll(a.ctx); err == nil {
		for _, s := range screens {
			if s.IsCurrent || (width == 0 && s.IsPrimary) {
				width, height = s.Size.Width, s.Size.Height
			}
		}
	}
	return a.window.ResetToDefault(width, height)
}
