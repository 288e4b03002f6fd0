package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// ReportRow is one detail line of the monthly report, fully computed:
	// the renderer only lays these values out.
	ReportRow struct {
		Date      string
		Label     string
		Selection string
		Odds      decimal.Decimal
		Stake     decimal.Decimal
		Result    Result
		Profit    decimal.Decimal
	}

	// MonthlyStats summarizes one calendar month of betting.
	MonthlyStats struct {
		Year  int
		Month int

		Total   int
		Won     int
		Lost    int
		Pending int
		Void    int

		Staked      decimal.Decimal
		GrossReturn decimal.Decimal
		VoidStaked  decimal.Decimal
		Profit      decimal.Decimal
		ROI         float64 // percent
		WinRate     float64 // percent

		Rows []ReportRow
	}
)

// MonthKey formats a year/month pair as the YYYY-MM prefix used for both
// month filtering and the scheduler's once-per-month guard.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// inMonth reports whether a bet belongs to the given month: the match date
// carries the prefix, or — for bets without a match date — the creation
// timestamp does. The fallback keeps dateless bets countable.
func inMonth(b Bet, prefix string) bool {
	return strings.HasPrefix(b.Match.Date, prefix) || strings.HasPrefix(b.CreatedAt, prefix)
}

// AggregateMonth filters the ledger down to one month and computes the
// summary statistics and detail rows for the report.
//
// Void bets are treated as capital-neutral: their stake is refunded, so
// profit = grossReturn − staked + voidStaked. Won/lost counts exclude
// pending and void bets from the win-rate denominator. Ratios are zero
// when their denominator is zero.
func AggregateMonth(year, month int, l *Ledger) MonthlyStats {
	prefix := MonthKey(year, month)
	stats := MonthlyStats{Year: year, Month: month}

	for _, b := range l.Bets {
		if !inMonth(b, prefix) {
			continue
		}

		stats.Total++
		stats.Staked = stats.Staked.Add(b.Stake)

		rowProfit := decimal.Zero
		switch b.Result {
		case ResultWon:
			stats.Won++
			ret := b.Stake.Mul(b.BookOdds)
			stats.GrossReturn = stats.GrossReturn.Add(ret)
			rowProfit = ret.Sub(b.Stake).Round(2)
		case ResultLost:
			stats.Lost++
			rowProfit = b.Stake.Neg()
		case ResultVoid:
			stats.Void++
			stats.VoidStaked = stats.VoidStaked.Add(b.Stake)
		default:
			stats.Pending++
		}

		stats.Rows = append(stats.Rows, ReportRow{
			Date:      b.Match.Date,
			Label:     MatchLabel(b),
			Selection: resolve(b).Selection,
			Odds:      b.BookOdds,
			Stake:     b.Stake,
			Result:    b.Result,
			Profit:    rowProfit,
		})
	}

	stats.Profit = stats.GrossReturn.Sub(stats.Staked).Add(stats.VoidStaked)

	if stats.Staked.IsPositive() {
		roi, _ := stats.Profit.Div(stats.Staked).Float64()
		stats.ROI = roi * 100
	}
	if settled := stats.Won + stats.Lost; settled > 0 {
		stats.WinRate = float64(stats.Won) / float64(settled) * 100
	}

	// Newest first; rows without a date end up last.
	sort.SliceStable(stats.Rows, func(i, j int) bool {
		return stats.Rows[i].Date > stats.Rows[j].Date
	})

	return stats
}
