package router

import (
	"testing"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

func TestClassifyPrecedence(t *testing.T) {
	r := New(DefaultTable())

	cases := []struct {
		symbol string
		want   models.SymbolClass
	}{
		{"BTCUSDT", models.ClassCryptoSpot},
		{"reliance.ns", models.ClassEquityLocal},
		{"EURUSD", models.ClassForexPair},
		{"NIFTY", models.ClassIndex},
		{"AAPL", models.ClassEquityForeign},
	}
	for _, c := range cases {
		if got := r.Classify(c.symbol); got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.symbol, got, c.want)
		}
	}
}

func TestClassifyCryptoWinsOverForexShapedSymbol(t *testing.T) {
	r := New(DefaultTable())
	// A crypto token substring anywhere in the symbol takes precedence, even
	// for a 3+3 letter symbol that has the shape of a forex pair.
	if got := r.Classify("ETHBTC"); got != models.ClassCryptoSpot {
		t.Errorf("Classify(ETHBTC) = %q, want crypto_spot", got)
	}
}

func TestLoadTableFallsBackWhenFileMissing(t *testing.T) {
	tbl, err := LoadTable("/nonexistent/router.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(tbl.CryptoTokens) == 0 {
		t.Fatalf("expected default table to be returned")
	}
}
