package infra

// pdf.go — monthly consumption summary export using go-pdf/fpdf.
// One A4 page (more if needed) with a row per active nevera and the total
// amount of its albaranes for the selected month.

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ResumenRow is one line of the summary table.
type ResumenRow struct {
	Nevera string
	Total  decimal.Decimal
}

// WriteResumenPDF renders the monthly summary table to w.
func WriteResumenPDF(w io.Writer, year, month int, rows []ResumenRow) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Core fonts are cp1252: every user-facing string goes through the
	// translator or accents and dashes come out garbled.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Lupierra — Resumen mensual de albaranes"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Periodo: %02d/%d", month, year), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Table ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.65
	col2 := contentW * 0.35

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "Nevera", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Consumo", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	granTotal := decimal.Zero
	for _, row := range rows {
		nombre := truncarNombre(row.Nevera, 48)
		pdf.CellFormat(col1, 6, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, row.Total.StringFixed(2)+" EUR", "", 1, "R", false, 0, "")
		granTotal = granTotal.Add(row.Total)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 7, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, granTotal.StringFixed(2)+" EUR", "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// truncarNombre caps a name at max runes, never mid-rune, appending an
// ellipsis when it cut something.
func truncarNombre(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
