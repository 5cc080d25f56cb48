package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// BulkCreateCommand is the backend command that creates imported students.
const BulkCreateCommand = "bulk_create_students"

// ExcelBytes renders t as an .xlsx workbook with a bold, filtered header row.
func ExcelBytes(t *Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, err
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if w > 60 {
			w = 60
		}
		if err := f.SetColWidth(sheet, col, col, float64(w+2)); err != nil {
			return nil, err
		}
	}

	lastData, err := excelize.CoordinatesToCellName(len(t.Headers), len(t.Rows)+1)
	if err != nil {
		return nil, err
	}
	if err := f.AutoFilter(sheet, "A1:"+lastData, nil); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// StudentHeaders maps spreadsheet headers (Turkish or field names) to student fields.
var StudentHeaders = map[string]string{
	"ad":            "name",
	"adı":           "name",
	"soyad":         "surname",
	"soyadı":        "surname",
	"e-posta":       "email",
	"eposta":        "email",
	"telefon":       "phone",
	"doğum tarihi":  "birthDate",
	"adres":         "address",
	"sınıf":         "class",
	"kayıt tarihi":  "enrollmentDate",
	"veli iletişim": "parentContact",
	"notlar":        "notes",
	"cinsiyet":      "gender",
}

// ReadStudents reads the first sheet of an .xlsx workbook. The first row
// holds headers; rows without a name and surname are skipped.
func ReadStudents(r io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	fields := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		fields[i] = studentField(h)
	}

	students := []map[string]any{}
	for _, row := range rows[1:] {
		rec := make(map[string]any)
		for i, v := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				rec[fields[i]] = v
			}
		}
		if rec["name"] == nil || rec["surname"] == nil {
			continue
		}
		students = append(students, rec)
	}
	return students, nil
}

func studentField(header string) string {
	trimmed := strings.TrimSpace(header)
	if field, ok := StudentHeaders[strings.ToLowerSpecial(unicode.TurkishCase, trimmed)]; ok {
		return field
	}
	for key := range StudentLabels {
		if strings.EqualFold(key, trimmed) {
			return key
		}
	}
	return ""
}

// ImportStudents reads students from an .xlsx workbook and creates them
// through the backend. It returns the backend's result.
func ImportStudents(ctx context.Context, backend transport.Invoker, data []byte) (json.RawMessage, int, error) {
	students, err := ReadStudents(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	if len(students) == 0 {
		return json.RawMessage("[]"), 0, nil
	}
	if backend == nil {
		return nil, 0, transport.NormalizeError(BulkCreateCommand, transport.ErrBridgeUnavailable)
	}
	result, err := backend.Invoke(ctx, BulkCreateCommand, map[string]any{"students": students})
	if err != nil {
		return nil, 0, transport.NormalizeError(BulkCreateCommand, err)
	}
	return result, len(students), nil
}
