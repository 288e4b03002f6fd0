package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
	"betpoisson/internal/services"
)

type betRequest struct {
	Action   string           `json:"action"`
	Bet      core.BetPatch    `json:"bet"`
	Bankroll *decimal.Decimal `json:"bankroll"`
}

type reportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// handleHealth is the unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// handleBet applies a slip event. Success means the ledger write is
// durable; the Telegram notification runs detached afterwards.
func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or empty body")
		return
	}

	// Payloads without an action are slip placements.
	if req.Action == "" {
		req.Action = string(services.ActionNew)
	}
	action := services.Action(req.Action)
	if !action.Valid() {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err := s.slips.HandleSlip(r.Context(), action, req.Bet, req.Bankroll); err != nil {
		s.log.ErrorContext(r.Context(), "slip handling failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleSync replaces the whole persisted ledger document.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	ledger := core.NewLedger()
	if err := json.NewDecoder(r.Body).Decode(ledger); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or empty body")
		return
	}
	if ledger.Bets == nil {
		ledger.Bets = []core.Bet{}
	}

	if err := s.slips.Sync(r.Context(), ledger); err != nil {
		s.log.ErrorContext(r.Context(), "ledger sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleReport triggers report generation for the requested month, the
// current UTC month by default, and returns before it completes.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	now := s.now().UTC()
	req := reportRequest{Year: now.Year(), Month: int(now.Month())}

	// An empty body means the current month.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 1 {
		writeError(w, http.StatusBadRequest, "invalid year/month")
		return
	}

	s.slips.TriggerReport(req.Year, req.Month)

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": fmt.Sprintf("Report %d/%d in elaborazione...", req.Month, req.Year),
	})
}
