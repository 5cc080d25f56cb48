package desktop

import (
	"context"
	"encoding/json"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rehber360/rehber360-desktop/internal/ipc"
)

// shellHandler serves the tray companion over the shell IPC endpoint.
type shellHandler struct {
	app *App
}

var _ ipc.Handler = (*shellHandler)(nil)

func (h *shellHandler) Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error) {
	return h.app.engine.Router().Invoke(ctx, command, args)
}

func (h *shellHandler) GetStatus() *ipc.StatusData {
	return h.app.engine.Status(h.app.window.Visible())
}

func (h *shellHandler) ShowWindow() error {
	h.app.window.Show()
	runtime.WindowSetAlwaysOnTop(h.app.ctx, true)
	runtime.WindowSetAlwaysOnTop(h.app.ctx, false)
	return nil
}

func (h *shellHandler) Navigate(path string) error {
	h.app.window.Show()
	h.app.dispatcher.Navigate(path)
	return nil
}

func (h *shellHandler) MenuAction(action string) error {
	h.app.dispatcher.Dispatch(action)
	return nil
}

func (h *shellHandler) Quit() error {
	go h.app.quit()
	return nil
}
