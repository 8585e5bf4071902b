// Package poller implements the Poller (C5): a single long-lived task that
// periodically drives subscriptions through the router and adapters into
// the cache. Grounded on background_fetcher (app/fetcher.py) for the
// per-pass algorithm, and on internal/tasks/tasks.go's SymbolUpdateTask for
// the Start/Stop/stopChan harness shape.
package poller

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/vikasavnish/marketaggregator/internal/cache"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/models"
	"github.com/vikasavnish/marketaggregator/internal/providers"
	"github.com/vikasavnish/marketaggregator/internal/subscriptions"
)

const (
	adapterCallTimeout = 15 * time.Second
	interSymbolDelay   = 200 * time.Millisecond
)

// Routes is the C2 contract the Poller needs from the symbol router/adapter
// registry. Defined here, not imported, so tests can substitute a fake
// without constructing real provider adapters.
type Routes interface {
	Route(symbol string) (providers.QuoteProvider, models.SymbolClass)
}

// Task is the Poller. It satisfies tasks.Task (Start/Stop) so it can be
// registered with the shared task manager alongside any other scheduled
// work.
type Task struct {
	cache    *cache.Cache
	subs     *subscriptions.Store
	registry Routes
	interval time.Duration
	limiter  *rate.Limiter
	log      *logging.Logger
	metrics  *metrics.Collectors

	stopChan  chan struct{}
	doneChan  chan struct{}
	isRunning bool

	onComplete func()
}

func New(c *cache.Cache, subs *subscriptions.Store, registry Routes, interval time.Duration, log *logging.Logger, m *metrics.Collectors) *Task {
	return &Task{
		cache:    c,
		subs:     subs,
		registry: registry,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interSymbolDelay), 1),
		log:      log,
		metrics:  m,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// SetOnComplete registers a callback invoked at the end of every poll pass,
// after subscriptions are persisted and pass metrics are recorded. Used to
// publish a completion event (SPEC_FULL.md's optional REDIS_URL sink)
// without coupling the Poller itself to any messaging library.
func (t *Task) SetOnComplete(fn func()) {
	t.onComplete = fn
}

// Start begins the polling loop in the calling goroutine. Callers that want
// it backgrounded (the normal case) invoke it via `go task.Start()`, matching
// the teacher's tasks.Manager convention.
func (t *Task) Start() {
	if t.isRunning {
		return
	}
	t.isRunning = true
	defer close(t.doneChan)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info("poller started")
	t.runPass()

	for {
		select {
		case <-ticker.C:
			t.runPass()
		case <-t.stopChan:
			t.isRunning = false
			t.log.Info("poller stopped")
			return
		}
	}
}

// Stop signals the loop to exit at the next boundary and blocks until it
// has. The in-flight adapter call, if any, is allowed to finish or time out
// on its own; no pending state is lost because the subscription document is
// the only durable state (spec.md §4.5).
func (t *Task) Stop() {
	if !t.isRunning {
		return
	}
	close(t.stopChan)
	<-t.doneChan
}

// runPass iterates one stable snapshot of the subscription list, routes and
// fetches each symbol, and persists the subscription list at the end. One
// symbol's failure never aborts the pass (spec.md §4.5 isolation contract).
func (t *Task) runPass() {
	start := time.Now()
	symbols := t.subs.Snapshot()
	if len(symbols) == 0 {
		return // idle; the next tick will re-check
	}

	for _, symbol := range symbols {
		select {
		case <-t.stopChan:
			return
		default:
		}

		if err := t.limiter.Wait(context.Background()); err != nil {
			return
		}

		provider, class := t.registry.Route(symbol)
		ctx, cancel := context.WithTimeout(context.Background(), adapterCallTimeout)
		quote, err := provider.GetQuote(ctx, symbol)
		cancel()

		if err != nil {
			kind := models.KindOf(err)
			t.log.WithField("symbol", symbol).WithField("class", class).WithField("err_kind", kind).
				Warn("poll: symbol fetch failed, skipping")
			t.metrics.PollSymbolError(string(kind))
			continue
		}

		t.cache.Set(symbol, quote)
	}

	if err := t.subs.Save(); err != nil {
		t.log.WithError(err).Warn("poll: failed to persist subscriptions")
	}

	t.metrics.PollPassDuration(time.Since(start).Seconds())
	t.metrics.SetCacheSize(t.cache.Len())

	if t.onComplete != nil {
		t.onComplete()
	}
}
