package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rehber360/rehber360-desktop/internal/transport"
)

const studentsJSON = `[
	{"id":"s1","name":"Ayşe","surname":"Yılmaz","class":"9-A","risk":"high","active":true,"score":87.5,"notes":null},
	{"id":"s2","name":"Mehmet","surname":"Demir","class":"10-B","extra":{"k":1}}
]`

func TestTableFromJSON(t *testing.T) {
	table, err := TableFromJSON("Öğrenciler", json.RawMessage(studentsJSON), nil, StudentLabels)
	if err != nil {
		t.Fatalf("TableFromJSON failed: %v", err)
	}

	wantColumns := []string{"id", "name", "surname", "class", "risk", "active", "score", "notes", "extra"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Expected columns %v, got %v", wantColumns, table.Columns)
	}
	if table.Headers[1] != "Ad" || table.Headers[3] != "Sınıf" || table.Headers[5] != "active" {
		t.Errorf("Unexpected headers %v", table.Headers)
	}

	wantRow := []string{"s1", "Ayşe", "Yılmaz", "9-A", "high", "Evet", "87.5", "", ""}
	if !reflect.DeepEqual(table.Rows[0], wantRow) {
		t.Errorf("Expected %v, got %v", wantRow, table.Rows[0])
	}
	if table.Rows[1][8] != `{"k":1}` {
		t.Errorf("Expected nested object as JSON, got %q", table.Rows[1][8])
	}
}

func TestTableFromJSONEnvelopeAndColumns(t *testing.T) {
	raw := json.RawMessage(`{"data":[{"name":"Ali","surname":"Kaya"}]}`)
	table, err := TableFromJSON("x", raw, []string{"surname", "name"}, nil)
	if err != nil {
		t.Fatalf("TableFromJSON failed: %v", err)
	}
	if !reflect.DeepEqual(table.Rows[0], []string{"Kaya", "Ali"}) {
		t.Errorf("Unexpected row %v", table.Rows[0])
	}

	if _, err := TableFromJSON("x", json.RawMessage(`{"name":"Ali"}`), nil, nil); !errors.Is(err, ErrNotAList) {
		t.Errorf("Expected ErrNotAList, got %v", err)
	}
	if _, err := TableFromJSON("x", json.RawMessage(`[1,2]`), nil, nil); !errors.Is(err, ErrNotAList) {
		t.Errorf("Expected ErrNotAList for scalars, got %v", err)
	}
}

func TestSheetName(t *testing.T) {
	if got := sheetName("Rapor: 2026/10"); got != "Rapor- 2026-10" {
		t.Errorf("Unexpected sheet name %q", got)
	}
	if got := sheetName(""); got != "Sheet1" {
		t.Errorf("Expected Sheet1, got %q", got)
	}
	if got := []rune(sheetName("Çok uzun bir rapor başlığı ve daha fazlası")); len(got) != 31 {
		t.Errorf("Expected 31 runes, got %d", len(got))
	}
}

func TestExcelBytes(t *testing.T) {
	table, _ := TableFromJSON("Öğrenciler", json.RawMessage(studentsJSON), []string{"name", "surname", "class"}, StudentLabels)

	data, err := ExcelBytes(table)
	if err != nil {
		t.Fatalf("ExcelBytes failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "Öğrenciler" {
		t.Errorf("Expected sheet Öğrenciler, got %s", name)
	}
	rows, _ := f.GetRows("Öğrenciler")
	if len(rows) != 3 || rows[0][0] != "Ad" || rows[2][1] != "Demir" {
		t.Errorf("Unexpected rows %v", rows)
	}

	students, err := ReadStudents(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadStudents failed: %v", err)
	}
	if len(students) != 2 || students[0]["class"] != "9-A" || students[1]["name"] != "Mehmet" {
		t.Errorf("Unexpected students %v", students)
	}
}

func TestExcelBytesRequiresColumns(t *testing.T) {
	if _, err := ExcelBytes(&Table{}); err == nil {
		t.Error("Expected error for empty table")
	}
}

func TestPDFBytes(t *testing.T) {
	table, _ := TableFromJSON("Risk Öğrenci Listesi", json.RawMessage(studentsJSON), nil, StudentLabels)
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, table.Rows[0])
	}

	data, err := PDFBytes(table, time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PDFBytes failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("Expected PDF header, got %q", data[:8])
	}
}

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestImportStudents(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Adı", "Soyadı", "Sınıf", "Veli İletişim", "Bilinmeyen"},
		{"Zeynep", "Arslan", "11-C", "0555 000 00 00", "x"},
		{"", "Eksik", "9-A"},
		{"Can", "Öztürk"},
	})

	var got map[string]any
	backend := transport.InvokerFunc(func(_ context.Context, command string, args map[string]any) (json.RawMessage, error) {
		if command != BulkCreateCommand {
			t.Errorf("Unexpected command %s", command)
		}
		got = args
		return json.RawMessage(`{"created":2}`), nil
	})

	result, n, err := ImportStudents(context.Background(), backend, data)
	if err != nil {
		t.Fatalf("ImportStudents failed: %v", err)
	}
	if n != 2 || string(result) != `{"created":2}` {
		t.Errorf("Unexpected result %d %s", n, result)
	}

	students := got["students"].([]map[string]any)
	if students[0]["parentContact"] != "0555 000 00 00" || students[0]["Bilinmeyen"] != nil {
		t.Errorf("Unexpected first student %v", students[0])
	}
	if students[1]["surname"] != "Öztürk" {
		t.Errorf("Unexpected second student %v", students[1])
	}

	if _, _, err := ImportStudents(context.Background(), nil, data); !transport.IsBridgeUnavailable(err) {
		t.Errorf("Expected bridge unavailable, got %v", err)
	}
}
