package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
)

// Palette shared by the KPI grid and the detail table.
var (
	colorAccent = rgb{200, 85, 61}
	colorDark   = rgb{26, 26, 26}
	colorMuted  = rgb{158, 152, 145}
	colorGreen  = rgb{45, 138, 86}
	colorPanel  = rgb{245, 242, 237}
	colorRowAlt = rgb{250, 248, 245}
	colorGrid   = rgb{232, 228, 221}
)

type rgb struct{ r, g, b int }

// RenderPDF draws the monthly report document. Every figure arrives
// precomputed and rounded inside stats; this function only lays values
// out. The core fonts are cp1252, so labels stay plain text and the
// translator maps accents and the euro sign.
func RenderPDF(stats core.MonthlyStats, generatedAt time.Time) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf layout: %v", r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(colorDark.r, colorDark.g, colorDark.b)
	pdf.CellFormat(0, 10, "BetPoisson", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(colorMuted.r, colorMuted.g, colorMuted.b)
	subtitle := fmt.Sprintf("Report Mensile - %s %d", MonthName(stats.Month), stats.Year)
	pdf.CellFormat(0, 7, tr(subtitle), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetDrawColor(colorAccent.r, colorAccent.g, colorAccent.b)
	pdf.SetLineWidth(0.4)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	drawKPIGrid(pdf, tr, stats)
	pdf.Ln(8)

	if len(stats.Rows) > 0 {
		drawDetailTable(pdf, tr, stats.Rows)
	}

	// Footer
	pdf.Ln(8)
	pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.SetLineWidth(0.2)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(colorMuted.r, colorMuted.g, colorMuted.b)
	footer := fmt.Sprintf("Generato il %s UTC - BetPoisson", generatedAt.Format("02/01/2006 15:04"))
	pdf.CellFormat(0, 5, tr(footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func drawKPIGrid(pdf *fpdf.Fpdf, tr func(string) string, stats core.MonthlyStats) {
	const cellW, headH, valH = 42.5, 7.0, 10.0

	profitColor := colorGreen
	if stats.Profit.IsNegative() {
		profitColor = colorAccent
	}

	rows := []struct {
		labels []string
		values []string
		colors []rgb
		valH   float64
		size   float64
	}{
		{
			labels: []string{"Schedine", "Vinte", "Perse", "In Attesa"},
			values: []string{
				fmt.Sprintf("%d", stats.Total), fmt.Sprintf("%d", stats.Won),
				fmt.Sprintf("%d", stats.Lost), fmt.Sprintf("%d", stats.Pending),
			},
			colors: []rgb{colorDark, colorGreen, colorAccent, colorDark},
			valH:   valH, size: 15,
		},
		{
			labels: []string{"Puntato", "Profitto", "ROI", "Win Rate"},
			values: []string{
				"€" + stats.Staked.StringFixed(2),
				signPrefix(!stats.Profit.IsNegative()) + "€" + stats.Profit.StringFixed(2),
				fmt.Sprintf("%s%.1f%%", signPrefix(stats.ROI >= 0), stats.ROI),
				fmt.Sprintf("%.0f%%", stats.WinRate),
			},
			colors: []rgb{colorDark, profitColor, profitColor, colorDark},
			valH:   valH, size: 13,
		},
	}

	pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)
	pdf.SetLineWidth(0.2)

	for _, row := range rows {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(colorDark.r, colorDark.g, colorDark.b)
		pdf.SetFillColor(colorPanel.r, colorPanel.g, colorPanel.b)
		for _, label := range row.labels {
			pdf.CellFormat(cellW, headH, label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(headH)

		pdf.SetFont("Helvetica", "B", row.size)
		for i, value := range row.values {
			c := row.colors[i]
			pdf.SetTextColor(c.r, c.g, c.b)
			pdf.CellFormat(cellW, row.valH, tr(value), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(row.valH)
	}
}

func drawDetailTable(pdf *fpdf.Fpdf, tr func(string) string, rows []core.ReportRow) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(colorDark.r, colorDark.g, colorDark.b)
	pdf.CellFormat(0, 8, "Dettaglio Giocate", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	widths := []float64{15, 55, 35, 18, 18, 29}
	headers := []string{"Data", "Partita", "Esito", "Quota", "Puntata", "Risultato"}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(colorDark.r, colorDark.g, colorDark.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 8)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(colorRowAlt.r, colorRowAlt.g, colorRowAlt.b)
		pdf.SetTextColor(colorDark.r, colorDark.g, colorDark.b)

		cells := []string{
			shortDate(row.Date),
			row.Label,
			row.Selection,
			row.Odds.StringFixed(2),
			"€" + row.Stake.StringFixed(2),
			resultCell(row),
		}
		for j, cell := range cells {
			align := "C"
			if j == 1 || j == 2 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 5.5, tr(clip(cell, 40)), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(5.5)
	}
}

// shortDate keeps the MM-DD tail of a YYYY-MM-DD date.
func shortDate(date string) string {
	if len(date) > 5 {
		return date[len(date)-5:]
	}
	return date
}

func resultCell(row core.ReportRow) string {
	switch row.Result {
	case core.ResultWon:
		return "Vinta " + profitLabel(row.Profit)
	case core.ResultLost:
		return "Persa " + profitLabel(row.Profit)
	case core.ResultVoid:
		return "Rimborsata"
	default:
		return "In attesa"
	}
}

func profitLabel(p decimal.Decimal) string {
	if p.IsNegative() {
		return "€" + p.StringFixed(2)
	}
	return "+€" + p.StringFixed(2)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
