package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/window"
)

// wailsWindow implements window.Window over the Wails runtime.
type wailsWindow struct {
	ctx  context.Context
	quit func()
}

var _ window.Window = (*wailsWindow)(nil)

func (w *wailsWindow) Minimise()          { runtime.WindowMinimise(w.ctx) }
func (w *wailsWindow) Maximise()          { runtime.WindowMaximise(w.ctx) }
func (w *wailsWindow) Unmaximise()        { runtime.WindowUnmaximise(w.ctx) }
func (w *wailsWindow) IsMaximised() bool  { return runtime.WindowIsMaximised(w.ctx) }
func (w *wailsWindow) IsMinimised() bool  { return runtime.WindowIsMinimised(w.ctx) }
func (w *wailsWindow) Fullscreen()        { runtime.WindowFullscreen(w.ctx) }
func (w *wailsWindow) UnFullscreen()      { runtime.WindowUnfullscreen(w.ctx) }
func (w *wailsWindow) IsFullscreen() bool { return runtime.WindowIsFullscreen(w.ctx) }
func (w *wailsWindow) Center()            { runtime.WindowCenter(w.ctx) }
func (w *wailsWindow) Reload()            { runtime.WindowReload(w.ctx) }

func (w *wailsWindow) Show() {
	if runtime.WindowIsMinimised(w.ctx) {
		runtime.WindowUnminimise(w.ctx)
	}
	runtime.WindowShow(w.ctx)
}

func (w *wailsWindow) Hide() { runtime.WindowHide(w.ctx) }

func (w *wailsWindow) Size() (int, int)          { return runtime.WindowGetSize(w.ctx) }
func (w *wailsWindow) SetSize(width, height int) { runtime.WindowSetSize(w.ctx, width, height) }
func (w *wailsWindow) Position() (int, int)      { return runtime.WindowGetPosition(w.ctx) }
func (w *wailsWindow) SetPosition(x, y int)      { runtime.WindowSetPosition(w.ctx, x, y) }

// SetZoom scales the page. The webview has no zoom API, so CSS zoom is used.
func (w *wailsWindow) SetZoom(factor float64) {
	runtime.WindowExecJS(w.ctx, fmt.Sprintf("document.body.style.zoom = %g", factor))
}

func (w *wailsWindow) Quit() {
	if w.quit != nil {
		w.quit()
		return
	}
	runtime.Quit(w.ctx)
}

// execEdit runs a clipboard or history command in the page.
func execEdit(ctx context.Context, command string) {
	runtime.WindowExecJS(ctx, fmt.Sprintf("document.execCommand(%q)", command))
}

// wailsDialogs implements dialogs.Platform over the Wails runtime.
type wailsDialogs struct {
	ctx context.Context
}

var _ dialogs.Platform = (*wailsDialogs)(nil)

func (d *wailsDialogs) OpenFile(opts dialogs.OpenOptions) (string, error) {
	return runtime.OpenFileDialog(d.ctx, openDialogOptions(opts))
}

func (d *wailsDialogs) OpenMultipleFiles(opts dialogs.OpenOptions) ([]string, error) {
	return runtime.OpenMultipleFilesDialog(d.ctx, openDialogOptions(opts))
}

func (d *wailsDialogs) OpenDirectory(title string) (string, error) {
	return runtime.OpenDirectoryDialog(d.ctx, runtime.OpenDialogOptions{
		Title:                title,
		CanCreateDirectories: true,
	})
}

func (d *wailsDialogs) SaveFile(opts dialogs.SaveOptions) (string, error) {
	return runtime.SaveFileDialog(d.ctx, runtime.SaveDialogOptions{
		Title:           opts.Title,
		DefaultFilename: opts.DefaultPath,
		Filters:         fileFilters(opts.Filters),
	})
}

func openDialogOptions(opts dialogs.OpenOptions) runtime.OpenDialogOptions {
	return runtime.OpenDialogOptions{
		Title:   opts.Title,
		Filters: fileFilters(opts.Filters),
	}
}

// fileFilters converts extension lists to Wails patterns ("*.xlsx;*.xls").
func fileFilters(filters []dialogs.FileFilter) []runtime.FileFilter {
	out := make([]runtime.FileFilter, 0, len(filters))
	for _, f := range filters {
		patterns := make([]string, 0, len(f.Extensions))
		for _, ext := range f.Extensions {
			if ext == "*" {
				patterns = append(patterns, "*.*")
				continue
			}
			patterns = append(patterns, "*."+strings.TrimPrefix(ext, "."))
		}
		out = append(out, runtime.FileFilter{
			DisplayName: f.Name,
			Pattern:     strings.Join(patterns, ";"),
		})
	}
	return out
}
