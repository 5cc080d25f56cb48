package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// The core PDF fonts are cp1252; Turkish letters outside it are folded to ASCII.
var turkishFold = strings.NewReplacer(
	"ş", "s", "Ş", "S",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
)

// PDFBytes renders t as an A4 table with a title and generation date.
// Tables with more than six columns use landscape orientation.
func PDFBytes(t *Table, generated time.Time) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	orientation := "P"
	if len(t.Columns) > 6 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(turkishFold.Replace(s)) }

	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(t.Columns))
	const rowH = 7.0

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(224, 231, 255)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, rowH, text(fit(pdf, h, colW)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, text(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, text("Oluşturulma: "+generated.Format("02.01.2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+rowH > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colW, rowH, text(fit(pdf, cell, colW)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates s with an ellipsis so it fits in width w at the current font.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	s = strings.ReplaceAll(s, "\n", " ")
	limit := w - 2
	if pdf.GetStringWidth(turkishFold.Replace(s)) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(turkishFold.Replace(string(runes))+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
