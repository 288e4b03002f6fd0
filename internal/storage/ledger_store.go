// Package storage persists the betting ledger as a single JSON document.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"betpoisson/internal/core"
	applog "betpoisson/internal/log"
)

// LedgerStore reads and rewrites the whole ledger file. Every write is a
// full-document overwrite with no locking: concurrent writers race and the
// last one wins. That is the accepted contract for this store.
type LedgerStore struct {
	path string
	log  *applog.Logger
}

func NewLedgerStore(path string, logger *applog.Logger) *LedgerStore {
	return &LedgerStore{path: path, log: logger}
}

// Path returns the ledger file location.
func (s *LedgerStore) Path() string {
	return s.path
}

// Load reads the full ledger. A missing file yields an empty ledger with
// default figures rather than an error.
func (s *LedgerStore) Load() (*core.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Debug("ledger file missing, starting empty", "path", s.path)
		return core.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	ledger := core.NewLedger()
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", s.path, err)
	}
	if ledger.Bets == nil {
		ledger.Bets = []core.Bet{}
	}
	return ledger, nil
}

// Save overwrites the ledger file with the given document.
func (s *LedgerStore) Save(l *core.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create ledger directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write ledger %s: %w", s.path, err)
	}
	return nil
}
