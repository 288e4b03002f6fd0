// Package report builds the monthly summary: aggregated statistics turned
// into a Telegram caption plus a rendered PDF, with a plain-text fallback
// when rendering fails.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
	applog "betpoisson/internal/log"
	"betpoisson/internal/metrics"
)

var monthNames = [...]string{"", "Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre"}

// MonthName returns the Italian month name, or "?" out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "?"
	}
	return monthNames[month]
}

// Sender is the outward notification channel the report needs: text for
// the degraded fallback, document for the PDF.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
	SendDocument(ctx context.Context, filename, caption string, data []byte) error
}

// Store provides the full ledger document.
type Store interface {
	Load() (*core.Ledger, error)
}

// Generator assembles and delivers the monthly report.
type Generator struct {
	store  Store
	sender Sender
	log    *applog.Logger

	now    func() time.Time
	render func(stats core.MonthlyStats, generatedAt time.Time) ([]byte, error)
}

func NewGenerator(store Store, sender Sender, logger *applog.Logger) *Generator {
	return &Generator{
		store:  store,
		sender: sender,
		log:    logger,
		now:    time.Now,
		render: RenderPDF,
	}
}

// SendMonthly aggregates the given month and sends the PDF report with its
// caption. A render failure degrades to the caption as a plain message; a
// failure of the fallback itself is only logged.
func (g *Generator) SendMonthly(ctx context.Context, year, month int) error {
	g.log.Info("generating monthly report", "year", year, "month", month)

	ledger, err := g.store.Load()
	if err != nil {
		return fmt.Errorf("load ledger for report: %w", err)
	}

	stats := core.AggregateMonth(year, month, ledger)
	caption := Caption(stats, ledger.Bankroll)

	pdf, err := g.render(stats, g.now().UTC())
	if err != nil {
		metrics.ReportsFallback.Inc()
		g.log.Error("pdf render failed, falling back to text", "year", year, "month", month, "error", err)

		fallback := caption + "\n\n⚠️ _PDF non disponibile: " + truncate(err.Error(), 80) + "_"
		if serr := g.sender.SendMessage(ctx, fallback); serr != nil {
			g.log.Error("text fallback failed", "year", year, "month", month, "error", serr)
			return fmt.Errorf("send fallback report: %w", serr)
		}
		g.log.Info("text report sent", "year", year, "month", month)
		return nil
	}

	filename := fmt.Sprintf("BetPoisson_%s_%d.pdf", MonthName(month), year)
	if err := g.sender.SendDocument(ctx, filename, caption, pdf); err != nil {
		return fmt.Errorf("send report document: %w", err)
	}

	metrics.ReportsGenerated.Inc()
	g.log.Info("pdf report sent", "year", year, "month", month, "bytes", len(pdf))
	return nil
}

// Caption renders the Telegram summary accompanying the report.
func Caption(stats core.MonthlyStats, bankroll decimal.Decimal) string {
	trend := "📈"
	if stats.Profit.IsNegative() {
		trend = "📉"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Report %s %d*\n\n", MonthName(stats.Month), stats.Year)
	fmt.Fprintf(&sb, "📋 %d schedine · %d✅ %d❌\n", stats.Total, stats.Won, stats.Lost)
	fmt.Fprintf(&sb, "💶 Puntato: €%s\n", stats.Staked.StringFixed(2))
	fmt.Fprintf(&sb, "%s P/L: *%s€%s* (ROI %s%.1f%%)\n",
		trend, signPrefix(!stats.Profit.IsNegative()), stats.Profit.StringFixed(2),
		signPrefix(stats.ROI >= 0), stats.ROI)
	fmt.Fprintf(&sb, "💰 Cassa: *€%s*", bankroll.StringFixed(2))
	return sb.String()
}

func signPrefix(nonNegative bool) string {
	if nonNegative {
		return "+"
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
