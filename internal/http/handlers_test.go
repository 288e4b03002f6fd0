package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"betpoisson/internal/core"
	"betpoisson/internal/dispatch"
	applog "betpoisson/internal/log"
	"betpoisson/internal/services"
)

const testSecret = "sesamo"

type memStore struct {
	mu     sync.Mutex
	ledger *core.Ledger
}

func (m *memStore) Load() (*core.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger, nil
}

func (m *memStore) Save(l *core.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = l
	return nil
}

type nopNotifier struct{}

func (nopNotifier) SendMessage(ctx context.Context, text string) error { return nil }

type countingReporter struct {
	mu    sync.Mutex
	calls []string
}

func (c *countingReporter) SendMonthly(ctx context.Context, year, month int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, core.MonthKey(year, month))
	return nil
}

type fixture struct {
	server   *Server
	store    *memStore
	reporter *countingReporter
	results  chan dispatch.Result
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := applog.New(applog.Config{Level: slog.LevelError})
	store := &memStore{ledger: core.NewLedger()}
	tasks := dispatch.New(logger, time.Second)
	results := make(chan dispatch.Result, 8)
	tasks.WatchResults(results)
	reporter := &countingReporter{}
	slips := services.NewSlipService(store, nopNotifier{}, reporter, tasks, logger)
	return &fixture{
		server:   NewServer(":0", testSecret, slips, logger),
		store:    store,
		reporter: reporter,
		results:  results,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string, secret bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if secret {
		req.Header.Set(SecretHeader, testSecret)
	}
	rec := httptest.NewRecorder()
	f.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (f *fixture) awaitTask(t *testing.T) dispatch.Result {
	t.Helper()
	select {
	case r := <-f.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no background task completed")
		return dispatch.Result{}
	}
}

func TestHealthIsOpen(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["time"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestSecretRequired(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/bet", "/api/sync", "/api/report"} {
		rec := f.do(t, http.MethodPost, path, `{}`, false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without secret: status = %d, want 401", path, rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "unauthorized" {
			t.Errorf("%s body = %v", path, body)
		}
	}
}

func TestBetNewUpsertsAndReturnsOK(t *testing.T) {
	f := newFixture(t)

	payload := `{"action":"new","bet":{"id":1,"stake":10,"bookOdds":2.0,"match":{"home":"Milan","away":"Inter","date":"2024-03-15"}},"bankroll":90}`
	rec := f.do(t, http.MethodPost, "/api/bet", payload, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Errorf("body = %v", body)
	}
	f.awaitTask(t)

	ledger, _ := f.store.Load()
	if len(ledger.Bets) != 1 || ledger.Bets[0].ID != "1" {
		t.Fatalf("ledger = %+v", ledger.Bets)
	}
	if !ledger.Bankroll.Equal(decimal.NewFromInt(90)) {
		t.Errorf("bankroll = %s", ledger.Bankroll)
	}
}

func TestBetSameIDTwiceKeepsOneEntry(t *testing.T) {
	f := newFixture(t)

	first := `{"action":"new","bet":{"id":"x","stake":10,"bookOdds":2.0,"selection":"1X"}}`
	second := `{"action":"new","bet":{"id":"x","notes":"steam move"}}`
	f.do(t, http.MethodPost, "/api/bet", first, true)
	f.awaitTask(t)
	f.do(t, http.MethodPost, "/api/bet", second, true)
	f.awaitTask(t)

	ledger, _ := f.store.Load()
	if len(ledger.Bets) != 1 {
		t.Fatalf("entries = %d, want 1", len(ledger.Bets))
	}
	b := ledger.Bets[0]
	if b.Notes != "steam move" || b.Selection != "1X" {
		t.Errorf("merge semantics broken: %+v", b)
	}
}

func TestBetResultSettlesWithoutDuplicating(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/bet", `{"action":"new","bet":{"id":"x","stake":10,"bookOdds":2.0}}`, true)
	f.awaitTask(t)

	rec := f.do(t, http.MethodPost, "/api/bet", `{"action":"result","bet":{"id":"x","result":"won"},"bankroll":110}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	f.awaitTask(t)

	ledger, _ := f.store.Load()
	if len(ledger.Bets) != 1 || ledger.Bets[0].Result != core.ResultWon {
		t.Fatalf("ledger = %+v", ledger.Bets)
	}
}

func TestBetUnknownActionRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bet", `{"action":"delete","bet":{"id":"x"}}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "unknown action" {
		t.Errorf("body = %v", body)
	}
}

func TestBetEmptyBodyRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bet", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSyncOverwritesWholeLedger(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/bet", `{"bet":{"id":"old","stake":5,"bookOdds":2}}`, true)
	f.awaitTask(t)

	payload := `{"bets":[{"id":"fresh","stake":1,"bookOdds":3}],"bankroll":200,"initialBankroll":100}`
	rec := f.do(t, http.MethodPost, "/api/sync", payload, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	ledger, _ := f.store.Load()
	if len(ledger.Bets) != 1 || ledger.Bets[0].ID != "fresh" {
		t.Fatalf("ledger = %+v", ledger.Bets)
	}
	if !ledger.Bankroll.Equal(decimal.NewFromInt(200)) {
		t.Errorf("bankroll = %s", ledger.Bankroll)
	}
}

func TestReportDefaultsToCurrentMonth(t *testing.T) {
	f := newFixture(t)
	f.server.now = func() time.Time {
		return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	}

	rec := f.do(t, http.MethodPost, "/api/report", `{}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true || !strings.Contains(body["message"].(string), "3/2024") {
		t.Errorf("body = %v", body)
	}

	f.awaitTask(t)
	f.reporter.mu.Lock()
	defer f.reporter.mu.Unlock()
	if len(f.reporter.calls) != 1 || f.reporter.calls[0] != "2024-03" {
		t.Fatalf("reporter calls = %v", f.reporter.calls)
	}
}

func TestReportExplicitMonth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/report", `{"year":2023,"month":12}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	f.awaitTask(t)

	f.reporter.mu.Lock()
	defer f.reporter.mu.Unlock()
	if len(f.reporter.calls) != 1 || f.reporter.calls[0] != "2023-12" {
		t.Fatalf("reporter calls = %v", f.reporter.calls)
	}
}

func TestReportInvalidMonthRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/report", `{"year":2024,"month":13}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
