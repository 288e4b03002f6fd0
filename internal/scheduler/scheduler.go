// Package scheduler triggers the monthly report near month-end.
//
// The loop is a coarse poll: every tick it asks ShouldSend whether the
// report is due. The once-per-month guard is the in-memory lastSentKey,
// which resets on restart — a restart during the send window can repeat a
// send, a documented and accepted behavior.
package scheduler

import (
	"context"
	"time"

	"betpoisson/internal/core"
	applog "betpoisson/internal/log"
)

// SendFunc delivers the report for one month.
type SendFunc func(ctx context.Context, year, month int) error

// ShouldSend decides whether the monthly report is due at the given
// instant: the last day of the month, at reportHour, and only if that
// month's key differs from the last one already sent. Pure, so tests can
// drive it with arbitrary clocks.
func ShouldSend(now time.Time, reportHour int, lastSentKey string) (string, bool) {
	key := core.MonthKey(now.Year(), int(now.Month()))

	// Day zero of next month is the last day of this one.
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()

	if now.Day() == lastDay && now.Hour() == reportHour && key != lastSentKey {
		return key, true
	}
	return key, false
}

type Scheduler struct {
	interval   time.Duration
	reportHour int
	send       SendFunc
	log        *applog.Logger

	clock       func() time.Time
	lastSentKey string
}

func New(interval time.Duration, reportHour int, send SendFunc, logger *applog.Logger) *Scheduler {
	return &Scheduler{
		interval:   interval,
		reportHour: reportHour,
		send:       send,
		log:        logger,
		clock:      time.Now,
	}
}

// Run polls until the context is cancelled. Always returns nil so it can
// sit in an errgroup without tearing the process down.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("report scheduler started", "interval", s.interval, "report_hour", s.reportHour)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("report scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one scheduling decision and, when due, sends the report.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock().UTC()

	key, due := ShouldSend(now, s.reportHour, s.lastSentKey)
	if !due {
		return
	}

	// Mark before sending: a failed send is not retried within the month.
	s.lastSentKey = key
	s.log.Info("month-end report due", "key", key)

	if err := s.send(ctx, now.Year(), int(now.Month())); err != nil {
		s.log.Error("scheduled report failed", "key", key, "error", err)
	}
}
