// Package providers implements the provider adapter contract (C1): one
// adapter per upstream venue, each normalizing errors and response shapes
// into the taxonomy and Quote shape spec.md §4.1 describes. Grounded on
// app/providers/*.py (per-venue fetch + error-swallowing pattern) and the
// adapter interface shape of other_examples/RajChodisetti-Trading-app's
// live_quotes.go.
package providers

import (
	"context"
	"time"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

// QuoteProvider is the minimal capability every adapter implements.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// HistoricalProvider is implemented by adapters that can serve OHLCV bars.
type HistoricalProvider interface {
	GetHistorical(ctx context.Context, symbol, period, interval string) ([]models.HistoricalBar, error)
}

// OptionChainProvider is implemented only by the exchange adapter.
type OptionChainProvider interface {
	GetOptionChain(ctx context.Context, index string) (models.OptionChainRaw, error)
}

// Stats24hProvider is implemented only by the crypto adapter.
type Stats24hProvider interface {
	Get24hStats(ctx context.Context, symbol string) (models.Stats24h, error)
}

// MultiQuoteProvider is implemented by adapters that can batch several
// symbols into a single upstream call.
type MultiQuoteProvider interface {
	GetMultiQuote(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// offload runs fn on a dedicated goroutine and returns its result, or ctx's
// error if it is cancelled first. This is how every adapter satisfies the
// "blocking I/O in an async scheduler → worker offload" design note: the
// underlying HTTP client call is synchronous, but the Poller loop calling in
// is never blocked past ctx's deadline.
func offload[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.val, r.err
	}
}

// callTimeout is the default per-adapter-call bound referenced in spec.md
// §5 ("finite timeout, ~10-30s per operation depending on endpoint").
const callTimeout = 15 * time.Second
