package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// Output formats.
const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format: must be xlsx or pdf")

// Request describes one export: which endpoint to read and how to render it.
type Request struct {
	Endpoint string   `json:"endpoint"`
	Title    string   `json:"title"`
	Columns  []string `json:"columns,omitempty"`
	Format   string   `json:"format"`
}

// Fetch reads req.Endpoint through t and builds a table from the result.
// Student endpoints get Turkish headers.
func Fetch(ctx context.Context, t transport.Transport, req Request) (*Table, error) {
	raw, err := t.Request(ctx, req.Endpoint, transport.RequestConfig{Method: "GET"})
	if err != nil {
		return nil, err
	}
	var labels map[string]string
	if strings.Contains(req.Endpoint, "student") {
		labels = StudentLabels
	}
	title := req.Title
	if title == "" {
		title = "Rapor"
	}
	return TableFromJSON(title, raw, req.Columns, labels)
}

// Render encodes t in format.
func Render(t *Table, format string, generated time.Time) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatExcel, "excel":
		return ExcelBytes(t)
	case FormatPDF:
		return PDFBytes(t, generated)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// FileName returns a default file name such as "ogrenci-listesi-2026-03-01.xlsx".
func FileName(title, format string, now time.Time) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-"), "-")
	if base == "" {
		base = "rapor"
	}
	ext := strings.ToLower(format)
	if ext == "excel" {
		ext = FormatExcel
	}
	return fmt.Sprintf("%s-%s.%s", base, now.Format("2006-01-02"), ext)
}
