package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the persisted root document: every bet ever received plus the
// externally maintained bankroll figures. Bets are ordered newest first;
// the order is display order only. The bankroll is supplied by the caller
// on each write and never derived from the bet list.
type Ledger struct {
	Bets            []Bet           `json:"bets"`
	Bankroll        decimal.Decimal `json:"bankroll"`
	InitialBankroll decimal.Decimal `json:"initialBankroll"`
}

// NewLedger returns an empty ledger with default figures.
func NewLedger() *Ledger {
	return &Ledger{Bets: []Bet{}}
}

// Find returns the bet with the given id, or nil.
func (l *Ledger) Find(id ID) *Bet {
	for i := range l.Bets {
		if l.Bets[i].ID == id {
			return &l.Bets[i]
		}
	}
	return nil
}

// Upsert merges the patch into the existing bet with the same id, or
// prepends a new bet built from it. Id uniqueness is enforced here: a
// resubmitted id never duplicates an entry. The returned pointer refers
// into the ledger's bet slice.
func (l *Ledger) Upsert(p BetPatch, now time.Time) *Bet {
	if existing := l.Find(p.ID); existing != nil {
		p.Apply(existing)
		return existing
	}
	l.Bets = append([]Bet{p.NewBet(now)}, l.Bets...)
	return &l.Bets[0]
}
