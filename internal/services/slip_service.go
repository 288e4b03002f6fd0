// Package services orchestrates slip operations across the ledger store,
// the async dispatcher and the Telegram notifier.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
	"betpoisson/internal/dispatch"
	applog "betpoisson/internal/log"
	"betpoisson/internal/metrics"
)

// Action is the slip event kind carried by the HTTP payload.
type Action string

const (
	ActionNew    Action = "new"
	ActionResult Action = "result"
)

// Valid reports whether the action is one the service accepts.
func (a Action) Valid() bool {
	return a == ActionNew || a == ActionResult
}

// Notifier sends the per-event text messages.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Store is the ledger persistence boundary.
type Store interface {
	Load() (*core.Ledger, error)
	Save(l *core.Ledger) error
}

// Reporter builds and delivers the monthly report.
type Reporter interface {
	SendMonthly(ctx context.Context, year, month int) error
}

// SlipService applies slip events: upsert into the ledger, persist, then
// notify asynchronously. The HTTP response depends only on the persisted
// write; notification delivery is best-effort and unobservable to the
// caller.
type SlipService struct {
	store    Store
	notifier Notifier
	reporter Reporter
	tasks    *dispatch.Dispatcher
	log      *applog.Logger

	now func() time.Time
}

func NewSlipService(store Store, notifier Notifier, reporter Reporter, tasks *dispatch.Dispatcher, logger *applog.Logger) *SlipService {
	return &SlipService{
		store:    store,
		notifier: notifier,
		reporter: reporter,
		tasks:    tasks,
		log:      logger,
		now:      time.Now,
	}
}

// HandleSlip processes one new/result event: merge-or-prepend the bet,
// overwrite the bankroll when the payload carries one, persist the whole
// document, and dispatch the notification. A storage failure aborts
// before any notification; a notification failure never surfaces here.
func (s *SlipService) HandleSlip(ctx context.Context, action Action, patch core.BetPatch, bankroll *decimal.Decimal) error {
	ledger, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	if patch.ID == "" {
		patch.ID = core.ID(uuid.NewString())
	}

	bet := ledger.Upsert(patch, s.now())
	if bankroll != nil {
		ledger.Bankroll = *bankroll
	}

	if err := s.store.Save(ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	var text string
	switch action {
	case ActionNew:
		text = core.FormatNewBet(*bet, ledger)
	case ActionResult:
		// Empty means the result is not terminal yet: do not send.
		text = core.FormatResult(*bet, ledger)
	}

	s.log.InfoContext(ctx, "slip processed", "action", string(action), "bet_id", string(bet.ID), "notify", text != "")

	if text != "" {
		s.dispatchMessage(string(action), text)
	}
	return nil
}

// Sync replaces the whole persisted ledger with the given document.
func (s *SlipService) Sync(ctx context.Context, ledger *core.Ledger) error {
	if err := s.store.Save(ledger); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	s.log.InfoContext(ctx, "ledger synced", "bets", len(ledger.Bets))
	return nil
}

// TriggerReport starts report generation for the given month in the
// background and returns immediately.
func (s *SlipService) TriggerReport(year, month int) {
	s.tasks.Dispatch("monthly_report", func(ctx context.Context) error {
		return s.reporter.SendMonthly(ctx, year, month)
	})
}

func (s *SlipService) dispatchMessage(kind, text string) {
	s.tasks.Dispatch("notify_"+kind, func(ctx context.Context) error {
		if err := s.notifier.SendMessage(ctx, text); err != nil {
			metrics.NotificationsFailed.WithLabelValues(kind).Inc()
			return fmt.Errorf("send %s notification: %w", kind, err)
		}
		metrics.NotificationsSent.WithLabelValues(kind).Inc()
		return nil
	})
}
