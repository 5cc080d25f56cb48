package desktop

import (
	"encoding/base64"

	"github.com/rehber360/rehber360-desktop/internal/dialogs"
)

// FileContentDTO carries a file read from disk. Content is base64 so binary
// files survive the bridge.
type FileContentDTO struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// SelectFile shows an open dialog. Returns "" when cancelled.
func (a *App) SelectFile(opts dialogs.OpenOptions) (string, error) {
	if a.dialogs == nil {
		return "", ErrWindowNotReady
	}
	return a.dialogs.SelectFile(opts)
}

// SelectExcelFile shows an open dialog limited to spreadsheets.
func (a *App) SelectExcelFile() (string, error) {
	return a.SelectFile(dialogs.OpenOptions{Title: "Excel Dosyası Seç", Filters: dialogs.ExcelFilters})
}

// SelectMultipleFiles shows a multi-select open dialog.
func (a *App) SelectMultipleFiles(opts dialogs.OpenOptions) ([]string, error) {
	if a.dialogs == nil {
		return nil, ErrWindowNotReady
	}
	return a.dialogs.SelectMultipleFiles(opts)
}

// SelectDirectory shows a folder picker.
func (a *App) SelectDirectory(title string) (string, error) {
	if a.dialogs == nil {
		return "", ErrWindowNotReady
	}
	return a.dialogs.SelectDirectory(title)
}

// SaveFile asks for a destination and writes data there. Strings are
// written as text; other values are JSON encoded. Returns "" when cancelled.
func (a *App) SaveFile(data any, opts dialogs.SaveOptions) (string, error) {
	if a.dialogs == nil {
		return "", ErrWindowNotReady
	}
	return a.dialogs.SaveFile(data, opts)
}

// ReadFile reads a file chosen by the user.
func (a *App) ReadFile(path string) (FileContentDTO, error) {
	data, err := dialogs.ReadFile(path)
	if err != nil {
		return FileContentDTO{}, err
	}
	return FileContentDTO{
		Path:    path,
		Content: base64.StdEncoding.EncodeToString(data),
		Size:    len(data),
	}, nil
}

// OpenExternal opens an http(s) or mailto URL in the default browser.
func (a *App) OpenExternal(url string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Shell().OpenExternal(url)
}

// OpenPath opens a file or folder with the system handler.
func (a *App) OpenPath(path string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Shell().OpenPath(path)
}

// ShowItemInFolder reveals a file in the system file manager.
func (a *App) ShowItemInFolder(path string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Shell().ShowItemInFolder(path)
}
