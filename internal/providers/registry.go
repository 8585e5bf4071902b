package providers

import (
	"github.com/vikasavnish/marketaggregator/internal/models"
	"github.com/vikasavnish/marketaggregator/internal/router"
)

// Registry binds the C2 symbol router to the concrete C1 adapters, giving
// callers (the Poller and HTTP handlers) a single Route entry point instead
// of hand-wiring the classifier to adapter instances themselves.
type Registry struct {
	Equities   *EquitiesAdapter
	Crypto     *CryptoAdapter
	Forex      *ForexAdapter
	Exchange   *ExchangeAdapter
	classifier *router.Router
}

func NewRegistry(classifier *router.Router, equities *EquitiesAdapter, crypto *CryptoAdapter, forex *ForexAdapter, exchange *ExchangeAdapter) *Registry {
	return &Registry{
		Equities:   equities,
		Crypto:     crypto,
		Forex:      forex,
		Exchange:   exchange,
		classifier: classifier,
	}
}

// Route classifies symbol and returns the adapter that should serve it,
// following the precedence table in spec.md §4.2.
func (r *Registry) Route(symbol string) (QuoteProvider, models.SymbolClass) {
	class := r.classifier.Classify(symbol)
	switch class {
	case models.ClassCryptoSpot:
		return r.Crypto, class
	case models.ClassForexPair:
		return r.Forex, class
	default: // equity_local, equity_foreign, index all route to the equities adapter
		return r.Equities, class
	}
}
