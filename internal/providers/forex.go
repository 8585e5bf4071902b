package providers

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// ForexPairInfo describes one entry of the static currency-pair table,
// grounded on FOREX_PAIRS (app/providers/forex_provider.py).
type ForexPairInfo struct {
	Base        string
	Quote       string
	Description string
}

// KnownForexPairs is the static table the forex adapter validates symbols
// against before ever making an upstream call — a subset of the original's
// FOREX_PAIRS dict, covering the majors and the common USD crosses.
var KnownForexPairs = map[string]ForexPairInfo{
	"EURUSD": {"EUR", "USD", "Euro vs US Dollar"},
	"GBPUSD": {"GBP", "USD", "British Pound vs US Dollar"},
	"USDJPY": {"USD", "JPY", "US Dollar vs Japanese Yen"},
	"USDCHF": {"USD", "CHF", "US Dollar vs Swiss Franc"},
	"AUDUSD": {"AUD", "USD", "Australian Dollar vs US Dollar"},
	"USDCAD": {"USD", "CAD", "US Dollar vs Canadian Dollar"},
	"NZDUSD": {"NZD", "USD", "New Zealand Dollar vs US Dollar"},
	"EURJPY": {"EUR", "JPY", "Euro vs Japanese Yen"},
	"GBPJPY": {"GBP", "JPY", "British Pound vs Japanese Yen"},
	"EURGBP": {"EUR", "GBP", "Euro vs British Pound"},
	"USDINR": {"USD", "INR", "US Dollar vs Indian Rupee"},
	"USDCNY": {"USD", "CNY", "US Dollar vs Chinese Yuan"},
	"USDSGD": {"USD", "SGD", "US Dollar vs Singapore Dollar"},
}

type forexQuoteResponse struct {
	Price     string `json:"price"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	Timestamp string `json:"timestamp"`
}

// ForexAdapter fetches spot quotes for known currency pairs. Grounded on
// get_forex_quote/_sync_forex_quote (app/providers/forex_provider.py).
type ForexAdapter struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	log     *logging.Logger
}

func NewForexAdapter(baseURL, apiKey string, log *logging.Logger) *ForexAdapter {
	return &ForexAdapter{
		client:  resty.New().SetTimeout(callTimeout),
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

func (a *ForexAdapter) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = UpperSymbol(symbol)
	if _, known := KnownForexPairs[symbol]; !known {
		return models.Quote{}, models.NewNotFound("unknown forex pair %s", symbol)
	}
	if a.apiKey == "" {
		return models.Quote{}, models.NewPermanent(nil, "forex adapter has no API key configured")
	}

	return offload(ctx, func() (models.Quote, error) {
		var body forexQuoteResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+a.apiKey).
			SetQueryParam("symbol", symbol+"=X").
			SetResult(&body).
			Get(a.baseURL + "/quote")
		if err != nil {
			return models.Quote{}, models.NewTransient(err, "forex quote request failed for %s", symbol)
		}
		if resp.StatusCode() == 404 {
			return models.Quote{}, models.NewNotFound("no forex data for %s", symbol)
		}
		if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			return models.Quote{}, models.NewTransient(nil, "forex upstream returned %d for %s", resp.StatusCode(), symbol)
		}

		price, err := ParsePrice(body.Price)
		if err != nil {
			return models.Quote{}, models.NewSchemaError("forex response has unparseable price for %s: %v", symbol, err)
		}
		bid, _ := ParsePrice(body.Bid)
		ask, _ := ParsePrice(body.Ask)

		return models.Quote{
			Symbol:    symbol,
			Price:     price,
			Bid:       bid,
			Ask:       ask,
			Timestamp: TimestampOrNow(body.Timestamp, "2006-01-02T15:04:05Z07:00"),
		}, nil
	})
}

// AvailablePairs mirrors get_available_pairs() for a `/forex/pairs`-style
// listing endpoint.
func AvailablePairs() []ForexPairInfo {
	out := make([]ForexPairInfo, 0, len(KnownForexPairs))
	for _, info := range KnownForexPairs {
		out = append(out, info)
	}
	return out
}

// IsForexPairSyntax reports whether symbol has the shape of a 3+3 letter
// currency pair, independent of whether it's in the known table.
func IsForexPairSyntax(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	if len(symbol) != 6 {
		return false
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
