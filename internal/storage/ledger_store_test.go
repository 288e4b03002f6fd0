package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
	applog "betpoisson/internal/log"
)

func newTestStore(t *testing.T) *LedgerStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "bets.json")
	return NewLedgerStore(path, applog.New(applog.Config{Level: slog.LevelError}))
}

func TestLoadMissingFileGivesEmptyLedger(t *testing.T) {
	store := newTestStore(t)

	l, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Bets) != 0 || !l.Bankroll.IsZero() {
		t.Errorf("expected empty defaults, got %+v", l)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	l := core.NewLedger()
	l.Bankroll = decimal.RequireFromString("250.50")
	stake := decimal.NewFromInt(10)
	odds := decimal.RequireFromString("1.95")
	l.Upsert(core.BetPatch{ID: "abc", Stake: &stake, BookOdds: &odds}, time.Now())

	if err := store.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Bets) != 1 || back.Bets[0].ID != "abc" {
		t.Fatalf("bets lost: %+v", back.Bets)
	}
	if !back.Bets[0].BookOdds.Equal(odds) || !back.Bankroll.Equal(l.Bankroll) {
		t.Errorf("figures changed on round trip: %+v", back)
	}
}

func TestSaveOverwritesWholeDocument(t *testing.T) {
	store := newTestStore(t)

	l := core.NewLedger()
	l.Upsert(core.BetPatch{ID: "1"}, time.Now())
	if err := store.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second save with a different document fully replaces the first.
	replacement := core.NewLedger()
	replacement.Bankroll = decimal.NewFromInt(42)
	if err := store.Save(replacement); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Bets) != 0 || !back.Bankroll.Equal(decimal.NewFromInt(42)) {
		t.Errorf("old document leaked through: %+v", back)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	store := newTestStore(t)
	l := core.NewLedger()
	if err := store.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
