// Package export renders an aggregated shopping list for download.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Format is a download format.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a query value to a format; empty means text.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, true
	case FormatPDF:
		return FormatPDF, true
	default:
		return "", false
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) Filename() string {
	return "shopping_cart." + string(f)
}

// Render writes items in format f.
func Render(w io.Writer, f Format, items []types.ShoppingListItem) error {
	if f == FormatPDF {
		return RenderPDF(w, items)
	}
	return RenderText(w, items)
}

// RenderText writes one "name: amount unit" line per item.
func RenderText(w io.Writer, items []types.ShoppingListItem) error {
	var buf bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&buf, "%s: %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderPDF writes a single-table A4 document.
func RenderPDF(w io.Writer, items []types.ShoppingListItem) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Shopping list", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Shopping list", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(110, 8, "Ingredient", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Unit", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range items {
		pdf.CellFormat(110, 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, strconv.Itoa(item.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, tr(item.MeasurementUnit), "1", 1, "L", false, 0, "")
	}
	if len(items) == 0 {
		pdf.CellFormat(180, 8, "Your shopping cart is empty.", "1", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}
