// Package report renders a summary report as a PDF document.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/jung-kurt/gofpdf"
)

// Title is the heading of the document.
const Title = "Reporte de bitácoras"

// FilterLine describes the filter in one line, "todos" when empty.
func FilterLine(f models.ReportFilter) string {
	s := ""
	if f.ClientContains != "" {
		s += "cliente contiene \"" + f.ClientContains + "\" "
	}
	if f.After != "" {
		s += "desde " + f.After + " "
	}
	if f.Before != "" {
		s += "hasta " + f.Before + " "
	}
	if s == "" {
		return "todos los registros"
	}
	return s[:len(s)-1]
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"ID", 14, "R"},
	{"Fecha", 24, "L"},
	{"Cliente", 60, "L"},
	{"Estado", 28, "L"},
	{"Partidas", 18, "R"},
	{"Total", 28, "R"},
}

// WritePDF writes rep to w. Amounts come from the server; the per-row
// figure is the record total, never recomputed.
func WritePDF(w io.Writer, rep *models.Report, filter models.ReportFilter) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Filtro: "+FilterLine(filter)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(60, 7, tr("Total de partidas"), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, strconv.Itoa(rep.TotalLineItems), "", 1, "R", false, 0, "")
	pdf.CellFormat(60, 7, tr("Costo total"), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "$"+rep.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(60, 7, tr("Vencidas"), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, strconv.Itoa(rep.OverdueCount), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, tr("Por estado de pago"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, st := range models.PaymentStates() {
		sum, ok := rep.ByState[st]
		if !ok {
			continue
		}
		pdf.CellFormat(40, 6, tr(st.Label()), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(sum.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, "$"+sum.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, l := range rep.Records {
		state := l.PaymentState.Label()
		if l.IsOverdue {
			state += " (!)"
		}
		cells := []string{
			strconv.FormatInt(l.ID, 10),
			l.Date,
			l.Client,
			state,
			strconv.Itoa(len(l.LineItems)),
			"$" + l.Total.StringFixed(2),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rep.Records) == 0 {
		pdf.CellFormat(0, 6, tr("Sin registros para el filtro."), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	return nil
}
