package desktop

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/export"
)

// ImportResultDTO is the outcome of a spreadsheet import.
type ImportResultDTO struct {
	Path     string          `json:"path"`
	Rows     int             `json:"rows"`
	Response json.RawMessage `json:"response,omitempty"`
}

// ExportExcel writes the result of endpoint to an .xlsx file chosen by the
// user. Returns "" when cancelled.
func (a *App) ExportExcel(endpoint, title string, columns []string) (string, error) {
	return a.exportTable(export.Request{Endpoint: endpoint, Title: title, Columns: columns, Format: export.FormatExcel})
}

// ExportPDF writes the result of endpoint to a .pdf file chosen by the user.
func (a *App) ExportPDF(endpoint, title string, columns []string) (string, error) {
	return a.exportTable(export.Request{Endpoint: endpoint, Title: title, Columns: columns, Format: export.FormatPDF})
}

func (a *App) exportTable(req export.Request) (string, error) {
	if a.engine == nil {
		return "", ErrNoEngine
	}
	if a.dialogs == nil {
		return "", ErrWindowNotReady
	}
	now := time.Now()
	table, err := export.Fetch(a.bindingContext(), a.engine.Transport(), req)
	if err != nil {
		return "", err
	}
	data, err := export.Render(table, req.Format, now)
	if err != nil {
		return "", err
	}

	filters := []dialogs.FileFilter{{Name: "Excel Files", Extensions: []string{"xlsx"}}}
	if req.Format == export.FormatPDF {
		filters = []dialogs.FileFilter{{Name: "PDF Files", Extensions: []string{"pdf"}}}
	}
	path, err := a.dialogs.SaveFile(data, dialogs.SaveOptions{
		Title:       "Dışa Aktar",
		DefaultPath: export.FileName(table.Title, req.Format, now),
		Filters:     filters,
	})
	if err != nil || path == "" {
		return "", err
	}

	a.logger.Info().Str("path", path).Int("rows", len(table.Rows)).Msg("Export written")
	a.engine.Events().PublishToast(events.ToastSuccess, "Dışa aktarıldı", fmt.Sprintf("%d kayıt kaydedildi", len(table.Rows)))
	return path, nil
}

// ImportStudentsFromExcel asks for a spreadsheet and sends its rows to the
// backend's bulk student import. Path is "" when cancelled.
func (a *App) ImportStudentsFromExcel() (ImportResultDTO, error) {
	if a.engine == nil {
		return ImportResultDTO{}, ErrNoEngine
	}
	path, err := a.SelectExcelFile()
	if err != nil || path == "" {
		return ImportResultDTO{}, err
	}
	data, err := dialogs.ReadFile(path)
	if err != nil {
		return ImportResultDTO{}, err
	}
	resp, rows, err := export.ImportStudents(a.bindingContext(), a.engine.Router(), data)
	if err != nil {
		return ImportResultDTO{}, err
	}
	a.logger.Info().Str("path", path).Int("rows", rows).Msg("Students imported")
	return ImportResultDTO{Path: path, Rows: rows, Response: resp}, nil
}
