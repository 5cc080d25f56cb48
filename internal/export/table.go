// Package export turns command results into Excel and PDF tables and reads
// student lists from Excel files.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotAList = errors.New("export data must be a list of objects")

// Table is a titled grid of string cells.
type Table struct {
	Title   string
	Columns []string
	Headers []string
	Rows    [][]string
}

// StudentLabels are the Turkish column headers for student fields.
var StudentLabels = map[string]string{
	"id":             "ID",
	"name":           "Ad",
	"surname":        "Soyad",
	"email":          "E-posta",
	"phone":          "Telefon",
	"birthDate":      "Doğum Tarihi",
	"address":        "Adres",
	"class":          "Sınıf",
	"enrollmentDate": "Kayıt Tarihi",
	"status":         "Durum",
	"parentContact":  "Veli İletişim",
	"notes":          "Notlar",
	"gender":         "Cinsiyet",
	"risk":           "Risk",
}

// TableFromJSON builds a table from a JSON array of objects, or from an
// object whose "data" field holds one. When columns is empty the columns are
// the keys in order of first appearance. labels maps keys to header text.
func TableFromJSON(title string, raw json.RawMessage, columns []string, labels map[string]string) (*Table, error) {
	items, err := listItems(raw)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]json.RawMessage, 0, len(items))
	var seen []string
	index := make(map[string]bool)
	for _, item := range items {
		keys, err := objectKeys(item)
		if err != nil {
			return nil, ErrNotAList
		}
		for _, k := range keys {
			if !index[k] {
				index[k] = true
				seen = append(seen, k)
			}
		}
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, ErrNotAList
		}
		records = append(records, rec)
	}

	if len(columns) == 0 {
		columns = seen
	}

	t := &Table{Title: title, Columns: columns, Headers: make([]string, len(columns))}
	for i, c := range columns {
		t.Headers[i] = c
		if label, ok := labels[c]; ok {
			t.Headers[i] = label
		}
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = cellText(rec[c])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func listItems(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 {
			trimmed = bytes.TrimSpace(envelope.Data)
		}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, ErrNotAList
	}
	return items, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(obj json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotAList
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrNotAList
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func cellText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
	case 't':
		return "Evet"
	case 'f':
		return "Hayır"
	case '{', '[':
		return string(v)
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(v)
}

// sheetName returns title made valid as an Excel sheet name.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

func (t *Table) validate() error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("export table has no columns")
	}
	return nil
}
