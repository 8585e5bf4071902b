package poller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vikasavnish/marketaggregator/internal/cache"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/models"
	"github.com/vikasavnish/marketaggregator/internal/providers"
	"github.com/vikasavnish/marketaggregator/internal/subscriptions"
)

// fakeProvider always fails or always succeeds, used to reproduce the
// GOOD/BAD isolation scenario (spec.md S6).
type fakeProvider struct {
	fail bool
}

func (f fakeProvider) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if f.fail {
		return models.Quote{}, models.NewTransient(nil, "always fails")
	}
	return models.Quote{Symbol: symbol, Price: decimal.NewFromInt(100), Timestamp: time.Now()}, nil
}

type fakeRoutes struct {
	good fakeProvider
	bad  fakeProvider
}

func (r fakeRoutes) Route(symbol string) (providers.QuoteProvider, models.SymbolClass) {
	if symbol == "BAD" {
		return r.bad, models.ClassEquityForeign
	}
	return r.good, models.ClassEquityForeign
}

func TestPollerIsolatesOneSymbolFailure(t *testing.T) {
	dir := t.TempDir()
	subs := subscriptions.Load(filepath.Join(dir, "subscriptions.json"), []string{"GOOD", "BAD"})
	c := cache.New()
	log := logging.New("test", "")
	m := metrics.New()

	task := New(c, subs, fakeRoutes{good: fakeProvider{fail: false}, bad: fakeProvider{fail: true}}, time.Hour, log, m)
	task.runPass()

	if _, ok := c.Get("GOOD"); !ok {
		t.Fatalf("expected GOOD to be cached after a pass")
	}
	if _, ok := c.Get("BAD"); ok {
		t.Fatalf("expected BAD to never be cached")
	}
}

func TestPollerPersistsSubscriptionsAtPassEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subscriptions.json")
	subs := subscriptions.Load(path, []string{"GOOD"})
	c := cache.New()
	log := logging.New("test", "")
	m := metrics.New()

	task := New(c, subs, fakeRoutes{good: fakeProvider{fail: false}, bad: fakeProvider{fail: true}}, time.Hour, log, m)
	task.runPass()

	reloaded := subscriptions.Load(path, nil)
	if len(reloaded.Snapshot()) != 1 {
		t.Fatalf("expected subscriptions to survive a pass")
	}
}

func TestOnCompleteFiresAfterEachPass(t *testing.T) {
	dir := t.TempDir()
	subs := subscriptions.Load(filepath.Join(dir, "subscriptions.json"), []string{"GOOD"})
	c := cache.New()
	log := logging.New("test", "")
	m := metrics.New()

	task := New(c, subs, fakeRoutes{good: fakeProvider{fail: false}}, time.Hour, log, m)
	calls := 0
	task.SetOnComplete(func() { calls++ })

	task.runPass()
	task.runPass()

	if calls != 2 {
		t.Fatalf("expected onComplete to fire once per pass, got %d calls", calls)
	}
}

func TestStopBeforeStartIsANoop(t *testing.T) {
	dir := t.TempDir()
	subs := subscriptions.Load(filepath.Join(dir, "subscriptions.json"), nil)
	task := New(cache.New(), subs, fakeRoutes{}, time.Hour, logging.New("test", ""), metrics.New())
	task.Stop() // must not block or panic
}
