package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	applog "betpoisson/internal/log"
)

func TestShouldSend(t *testing.T) {
	cases := []struct {
		name    string
		now     time.Time
		last    string
		wantKey string
		want    bool
	}{
		{
			name:    "last day at report hour",
			now:     time.Date(2024, 3, 31, 20, 15, 0, 0, time.UTC),
			wantKey: "2024-03",
			want:    true,
		},
		{
			name: "last day wrong hour",
			now:  time.Date(2024, 3, 31, 19, 59, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "mid month",
			now:  time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "already sent this month",
			now:  time.Date(2024, 3, 31, 20, 30, 0, 0, time.UTC),
			last: "2024-03",
			want: false,
		},
		{
			name:    "new month clears the guard",
			now:     time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC),
			last:    "2024-03",
			wantKey: "2024-04",
			want:    true,
		},
		{
			name:    "leap february",
			now:     time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC),
			wantKey: "2024-02",
			want:    true,
		},
		{
			name: "non-leap february 28th is not the end in a leap year",
			now:  time.Date(2024, 2, 28, 20, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name:    "december rollover",
			now:     time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC),
			wantKey: "2024-12",
			want:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, due := ShouldSend(tc.now, 20, tc.last)
			if due != tc.want {
				t.Fatalf("due = %v, want %v", due, tc.want)
			}
			if due && key != tc.wantKey {
				t.Errorf("key = %q, want %q", key, tc.wantKey)
			}
		})
	}
}

func TestTickFiresOncePerMonth(t *testing.T) {
	sent := 0
	s := New(time.Minute, 20, func(ctx context.Context, year, month int) error {
		sent++
		return nil
	}, applog.New(applog.Config{Level: slog.LevelError}))

	now := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	// Several ticks inside the send window: only the first one fires.
	for i := 0; i < 5; i++ {
		s.Tick(context.Background())
		now = now.Add(time.Minute)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	// Next month fires again.
	now = time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC)
	s.Tick(context.Background())
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
}

func TestTickPassesReportMonth(t *testing.T) {
	var gotYear, gotMonth int
	s := New(time.Minute, 20, func(ctx context.Context, year, month int) error {
		gotYear, gotMonth = year, month
		return nil
	}, applog.New(applog.Config{Level: slog.LevelError}))
	s.clock = func() time.Time { return time.Date(2025, 6, 30, 20, 5, 0, 0, time.UTC) }

	s.Tick(context.Background())
	if gotYear != 2025 || gotMonth != 6 {
		t.Fatalf("report month = %d-%d, want 2025-6", gotYear, gotMonth)
	}
}
