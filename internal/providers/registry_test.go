package providers

import (
	"testing"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/router"
)

func testRegistry() *Registry {
	log := logging.New("test", "")
	classifier := router.New(router.DefaultTable())
	return NewRegistry(
		classifier,
		NewEquitiesAdapter("http://equities.example", "key", log),
		NewCryptoAdapter("", "", log),
		NewForexAdapter("http://forex.example", "key", log),
		NewExchangeAdapter("http://exchange.example", log),
	)
}

func TestRouteSelectsCryptoAdapter(t *testing.T) {
	reg := testRegistry()
	provider, class := reg.Route("BTCUSDT")
	if provider != reg.Crypto {
		t.Fatalf("expected crypto adapter for BTCUSDT")
	}
	if class != "crypto_spot" {
		t.Fatalf("expected crypto_spot class, got %s", class)
	}
}

func TestRouteSelectsEquitiesAdapterForIndex(t *testing.T) {
	reg := testRegistry()
	provider, _ := reg.Route("NIFTY")
	if provider != reg.Equities {
		t.Fatalf("expected equities adapter for NIFTY (index)")
	}
}

func TestRouteSelectsForexAdapter(t *testing.T) {
	reg := testRegistry()
	provider, _ := reg.Route("EURUSD")
	if provider != reg.Forex {
		t.Fatalf("expected forex adapter for EURUSD")
	}
}
