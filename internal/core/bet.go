package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The ledger file and the HTTP payloads carry monetary values as plain
	// JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	ResultPending Result = "pending"
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
	ResultVoid    Result = "void"
)

type (
	// Result is the outcome lifecycle of a bet: pending until settled as
	// won, lost or void. An empty value counts as pending.
	Result string

	// ID is an opaque bet identifier, unique within the ledger. Clients
	// send it as either a JSON string or a JSON number; matching is always
	// on the string form.
	ID string

	// Match describes the fixture a bet was placed on. All fields are
	// free-form display strings; Date is expected as YYYY-MM-DD.
	Match struct {
		Home        string `json:"home,omitempty"`
		Away        string `json:"away,omitempty"`
		League      string `json:"league,omitempty"`
		Date        string `json:"date,omitempty"`
		Time        string `json:"time,omitempty"`
		CountryFlag string `json:"countryFlag,omitempty"`
	}

	// Bet is a single recorded slip.
	Bet struct {
		ID        ID              `json:"id"`
		Match     Match           `json:"match"`
		Selection string          `json:"selection,omitempty"`
		BookOdds  decimal.Decimal `json:"bookOdds"`
		Stake     decimal.Decimal `json:"stake"`
		Edge      *float64        `json:"edge,omitempty"`
		Notes     string          `json:"notes,omitempty"`
		Result    Result          `json:"result,omitempty"`
		CreatedAt string          `json:"createdAt,omitempty"`
	}
)

// Terminal reports whether the result is a settled outcome.
func (r Result) Terminal() bool {
	return r == ResultWon || r == ResultLost || r == ResultVoid
}

// UnmarshalJSON accepts both string and numeric identifiers. Numeric
// literals are kept verbatim so large ids survive without float rounding.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(data)
	return nil
}

type (
	// MatchPatch carries a partial fixture update.
	MatchPatch struct {
		Home        *string `json:"home"`
		Away        *string `json:"away"`
		League      *string `json:"league"`
		Date        *string `json:"date"`
		Time        *string `json:"time"`
		CountryFlag *string `json:"countryFlag"`
	}

	// BetPatch is the wire shape of an incoming bet: every field optional,
	// so a payload can carry any subset. Apply merges present fields into
	// an existing record and leaves the rest untouched.
	BetPatch struct {
		ID        ID               `json:"id"`
		Match     *MatchPatch      `json:"match"`
		Selection *string          `json:"selection"`
		BookOdds  *decimal.Decimal `json:"bookOdds"`
		Stake     *decimal.Decimal `json:"stake"`
		Edge      *float64         `json:"edge"`
		Notes     *string          `json:"notes"`
		Result    *Result          `json:"result"`
		CreatedAt *string          `json:"createdAt"`
	}
)

// Apply merges the present patch fields into b.
func (p BetPatch) Apply(b *Bet) {
	if p.Match != nil {
		if p.Match.Home != nil {
			b.Match.Home = *p.Match.Home
		}
		if p.Match.Away != nil {
			b.Match.Away = *p.Match.Away
		}
		if p.Match.League != nil {
			b.Match.League = *p.Match.League
		}
		if p.Match.Date != nil {
			b.Match.Date = *p.Match.Date
		}
		if p.Match.Time != nil {
			b.Match.Time = *p.Match.Time
		}
		if p.Match.CountryFlag != nil {
			b.Match.CountryFlag = *p.Match.CountryFlag
		}
	}
	if p.Selection != nil {
		b.Selection = *p.Selection
	}
	if p.BookOdds != nil {
		b.BookOdds = *p.BookOdds
	}
	if p.Stake != nil {
		b.Stake = *p.Stake
	}
	if p.Edge != nil {
		b.Edge = p.Edge
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Result != nil {
		b.Result = *p.Result
	}
	if p.CreatedAt != nil {
		b.CreatedAt = *p.CreatedAt
	}
}

// NewBet materializes a full bet from the patch. The creation timestamp
// defaults to now when the payload did not carry one.
func (p BetPatch) NewBet(now time.Time) Bet {
	b := Bet{ID: p.ID}
	p.Apply(&b)
	if b.CreatedAt == "" {
		b.CreatedAt = now.UTC().Format(time.RFC3339)
	}
	return b
}
