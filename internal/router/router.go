// Package router implements the symbol router (C2): a deterministic,
// stateless classifier that maps a symbol to a SymbolClass and, from the
// caller's perspective, the provider adapter to use. The exact token lists
// are configurable via an optional YAML table (SPEC_FULL §4.9); precedence
// always follows the table in spec.md §4.2, top wins.
package router

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

// Table is the configurable classification data. Zero value is empty; use
// DefaultTable for sane out-of-the-box behavior.
type Table struct {
	CryptoTokens          []string `yaml:"crypto_tokens"`
	LocalExchangeSuffixes []string `yaml:"local_exchange_suffixes"`
	ForexPairs            []string `yaml:"forex_pairs"`
	IndexSymbols          []string `yaml:"index_symbols"`
}

// DefaultTable mirrors the original's hard-coded token sets: NSE suffix for
// local equities, a handful of well-known crypto quote assets, the original's
// static FOREX_PAIRS table, and the common NSE indices.
func DefaultTable() Table {
	return Table{
		CryptoTokens:          []string{"USDT", "BUSD", "BTC", "ETH", "USDC"},
		LocalExchangeSuffixes: []string{".NS", ".BO"},
		ForexPairs:            []string{"EURUSD", "GBPUSD", "USDJPY", "USDINR", "AUDUSD", "USDCAD", "NZDUSD", "USDCHF"},
		IndexSymbols:          []string{"NIFTY", "BANKNIFTY", "SENSEX", "FINNIFTY", "MIDCPNIFTY"},
	}
}

// LoadTable reads a YAML router table from path. If path is empty or the
// file does not exist, DefaultTable() is returned unchanged.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultTable(), nil
	}
	if err != nil {
		return Table{}, err
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, err
	}
	if len(t.CryptoTokens) == 0 && len(t.LocalExchangeSuffixes) == 0 && len(t.ForexPairs) == 0 && len(t.IndexSymbols) == 0 {
		return DefaultTable(), nil
	}
	return t, nil
}

var forexPairPattern = regexp.MustCompile(`^[A-Z]{3}[A-Z]{3}$`)

// Router classifies symbols against a Table.
type Router struct {
	table Table
}

func New(table Table) *Router {
	return &Router{table: table}
}

// Classify returns the SymbolClass for symbol per the precedence table in
// spec.md §4.2: crypto token substring, then local-exchange suffix, then
// forex pair, then named index, else foreign equity.
func (r *Router) Classify(symbol string) models.SymbolClass {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	for _, token := range r.table.CryptoTokens {
		if strings.Contains(sym, strings.ToUpper(token)) {
			return models.ClassCryptoSpot
		}
	}

	for _, suffix := range r.table.LocalExchangeSuffixes {
		if strings.HasSuffix(sym, strings.ToUpper(suffix)) {
			return models.ClassEquityLocal
		}
	}

	if forexPairPattern.MatchString(sym) {
		for _, pair := range r.table.ForexPairs {
			if strings.EqualFold(pair, sym) {
				return models.ClassForexPair
			}
		}
	}

	for _, idx := range r.table.IndexSymbols {
		if strings.EqualFold(idx, sym) {
			return models.ClassIndex
		}
	}

	return models.ClassEquityForeign
}
