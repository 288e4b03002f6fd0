// Package core holds the pure betting domain: the ledger document, the
// Telegram message formatters and the monthly aggregation. Nothing in this
// package performs I/O.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// resolved is a bet with every display field defaulted, so the formatters
// never branch on missing data: unknown names become "?", an unknown flag
// becomes the soccer ball, unknown numeric fields stay zero.
type resolved struct {
	Home      string
	Away      string
	League    string
	Date      string
	Time      string
	Flag      string
	Selection string
	Odds      decimal.Decimal
	Stake     decimal.Decimal
	Edge      *float64
	Notes     string
	Result    Result
}

func resolve(b Bet) resolved {
	r := resolved{
		Home:      b.Match.Home,
		Away:      b.Match.Away,
		League:    b.Match.League,
		Date:      b.Match.Date,
		Time:      b.Match.Time,
		Flag:      b.Match.CountryFlag,
		Selection: b.Selection,
		Odds:      b.BookOdds,
		Stake:     b.Stake,
		Edge:      b.Edge,
		Notes:     b.Notes,
		Result:    b.Result,
	}
	if r.Home == "" {
		r.Home = "?"
	}
	if r.Away == "" {
		r.Away = "?"
	}
	if r.Flag == "" {
		r.Flag = "⚽"
	}
	if r.Selection == "" {
		r.Selection = "?"
	}
	return r
}

// MatchLabel is the display name of a bet's fixture, with defaults applied.
func MatchLabel(b Bet) string {
	r := resolve(b)
	return r.Home + " v " + r.Away
}

// FormatNewBet renders the Telegram message for a freshly placed bet. It is
// total over missing optional fields. Potential payout is stake × odds and
// potential profit is payout − stake, both rounded to 2 decimals.
func FormatNewBet(b Bet, l *Ledger) string {
	r := resolve(b)
	payout := r.Stake.Mul(r.Odds).Round(2)
	profit := payout.Sub(r.Stake).Round(2)

	var sb strings.Builder
	sb.WriteString("🎯 *Nuova Schedina*\n\n")
	fmt.Fprintf(&sb, "%s *%s vs %s*\n", r.Flag, r.Home, r.Away)
	fmt.Fprintf(&sb, "📅 %s · %s · %s\n\n", r.Date, r.Time, r.League)
	fmt.Fprintf(&sb, "📌 *Esito:* `%s`\n", r.Selection)
	fmt.Fprintf(&sb, "📊 *Quota:* %s\n", r.Odds.String())
	fmt.Fprintf(&sb, "💶 *Puntata:* €%s\n", r.Stake.StringFixed(2))
	fmt.Fprintf(&sb, "🏆 *Vincita pot.:* €%s (+€%s)", payout.StringFixed(2), profit.StringFixed(2))
	if r.Edge != nil {
		sb.WriteString("\n" + edgeLine(*r.Edge))
	}
	if r.Notes != "" {
		fmt.Fprintf(&sb, "\n📝 _%s_", r.Notes)
	}
	fmt.Fprintf(&sb, "\n💰 Cassa: *€%s*", l.Bankroll.StringFixed(2))
	return sb.String()
}

// FormatResult renders the settlement message for a bet, or an empty string
// when the result is not a terminal outcome — the caller must not send.
func FormatResult(b Bet, l *Ledger) string {
	r := resolve(b)

	var emoji, line string
	switch r.Result {
	case ResultWon:
		profit := r.Stake.Mul(r.Odds).Sub(r.Stake).Round(2)
		emoji, line = "✅", fmt.Sprintf("Vinta! +€%s", profit.StringFixed(2))
	case ResultLost:
		emoji, line = "❌", fmt.Sprintf("Persa — -€%s", r.Stake.StringFixed(2))
	case ResultVoid:
		emoji, line = "↩️", fmt.Sprintf("Rimborsata — €%s", r.Stake.StringFixed(2))
	default:
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *Risultato Schedina*\n\n", emoji)
	fmt.Fprintf(&sb, "%s *%s vs %s*\n", r.Flag, r.Home, r.Away)
	fmt.Fprintf(&sb, "📌 `%s` — *%s*\n\n", r.Selection, line)
	fmt.Fprintf(&sb, "💰 Cassa: *€%s*", l.Bankroll.StringFixed(2))
	return sb.String()
}

// edgeLine picks the qualitative tier for a known edge: positive above
// zero, marginal down to -5 exclusive, negative at -5 and below.
func edgeLine(edge float64) string {
	icon, sign := "📉", ""
	switch {
	case edge > 0:
		icon, sign = "📈", "+"
	case edge > -5:
		icon = "⚠️"
	}
	return fmt.Sprintf("%s *Edge:* %s%s%%", icon, sign, strconv.FormatFloat(edge, 'f', -1, 64))
}
