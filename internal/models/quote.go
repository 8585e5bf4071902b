package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolClass is the router's classification of a symbol. It is derived on
// every call, never stored.
type SymbolClass string

const (
	ClassEquityLocal   SymbolClass = "equity_local"
	ClassEquityForeign SymbolClass = "equity_foreign"
	ClassCryptoSpot    SymbolClass = "crypto_spot"
	ClassForexPair     SymbolClass = "forex_pair"
	ClassIndex         SymbolClass = "index"
	ClassOptionChain   SymbolClass = "option_contract"
)

// Quote is the unified normalized record every provider adapter produces for
// a single symbol at a point in time.
type Quote struct {
	Symbol         string          `json:"symbol"`
	Price          decimal.Decimal `json:"price"`
	Timestamp      time.Time       `json:"timestamp"`
	CompanyName    string          `json:"company_name,omitempty"`
	PercentChange  float64         `json:"percent_change"`
	AbsoluteChange decimal.Decimal `json:"absolute_change"`
	Bid            decimal.Decimal `json:"bid,omitempty"`
	Ask            decimal.Decimal `json:"ask,omitempty"`
	Open           decimal.Decimal `json:"open,omitempty"`
	High           decimal.Decimal `json:"high,omitempty"`
	Low            decimal.Decimal `json:"low,omitempty"`
	Volume         int64           `json:"volume,omitempty"`
}

// HistoricalBar is one OHLCV point in a time-ascending, finite series.
type HistoricalBar struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// Stats24h is the crypto adapter's rolling 24h statistics capability.
type Stats24h struct {
	Symbol             string          `json:"symbol"`
	PriceChange        decimal.Decimal `json:"price_change"`
	PriceChangePercent float64         `json:"price_change_percent"`
	HighPrice          decimal.Decimal `json:"high_price"`
	LowPrice           decimal.Decimal `json:"low_price"`
	Volume             decimal.Decimal `json:"volume"`
}
