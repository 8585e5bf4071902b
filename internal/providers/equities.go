package providers

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// equitiesQuoteResponse is the upstream-shaped response for a single-symbol
// quote. Numeric fields are strings because upstream sometimes formats them
// with thousands separators (spec.md §4.1 rule 2).
type equitiesQuoteResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	LastPrice   string `json:"lastPrice"`
	PChange     string `json:"pChange"`
	Change      string `json:"change"`
	Timestamp   string `json:"timestamp"`
}

type equitiesBar struct {
	Timestamp string `json:"timestamp"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	Volume    int64  `json:"volume"`
}

const equitiesTimestampLayout = "02-Jan-2006 15:04:05"

// EquitiesAdapter fetches quotes and historical bars for local and foreign
// equities, and doubles as the index adapter (spec.md §4.2's "index symbol
// mapping"). Grounded on fetch_stock_price/fetch_index_price
// (app/data_gather_stocks.py).
type EquitiesAdapter struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	log     *logging.Logger
}

func NewEquitiesAdapter(baseURL, apiKey string, log *logging.Logger) *EquitiesAdapter {
	return &EquitiesAdapter{
		client:  resty.New().SetTimeout(callTimeout),
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

func (a *EquitiesAdapter) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if a.apiKey == "" {
		return models.Quote{}, models.NewPermanent(nil, "equities adapter has no API key configured")
	}
	symbol = UpperSymbol(symbol)

	return offload(ctx, func() (models.Quote, error) {
		var body equitiesQuoteResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+a.apiKey).
			SetQueryParam("symbol", symbol).
			SetResult(&body).
			Get(a.baseURL + "/quote")
		if err != nil {
			return models.Quote{}, models.NewTransient(err, "equities quote request failed for %s", symbol)
		}
		if resp.StatusCode() == 404 {
			return models.Quote{}, models.NewNotFound("unknown equity symbol %s", symbol)
		}
		if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
			return models.Quote{}, models.NewPermanent(nil, "equities adapter auth rejected for %s", symbol)
		}
		if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			return models.Quote{}, models.NewTransient(nil, "equities upstream returned %d for %s", resp.StatusCode(), symbol)
		}
		if body.Symbol == "" {
			return models.Quote{}, models.NewSchemaError("equities response missing symbol for %s", symbol)
		}

		price, err := ParsePrice(body.LastPrice)
		if err != nil {
			return models.Quote{}, models.NewSchemaError("equities response has unparseable price for %s: %v", symbol, err)
		}

		var percentChange, absoluteChange decimal.Decimal
		if body.PChange != "" {
			percentChange, _ = ParsePrice(body.PChange)
		}
		if body.Change != "" {
			absoluteChange, _ = ParsePrice(body.Change)
		}

		pct, _ := percentChange.Float64()
		return models.Quote{
			Symbol:         symbol,
			Price:          price,
			CompanyName:    body.CompanyName,
			PercentChange:  pct,
			AbsoluteChange: absoluteChange,
			Timestamp:      TimestampOrNow(body.Timestamp, equitiesTimestampLayout),
		}, nil
	})
}

func (a *EquitiesAdapter) GetHistorical(ctx context.Context, symbol, period, interval string) ([]models.HistoricalBar, error) {
	if a.apiKey == "" {
		return nil, models.NewPermanent(nil, "equities adapter has no API key configured")
	}
	symbol = UpperSymbol(symbol)

	return offload(ctx, func() ([]models.HistoricalBar, error) {
		var body []equitiesBar
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+a.apiKey).
			SetQueryParams(map[string]string{"symbol": symbol, "period": period, "interval": interval}).
			SetResult(&body).
			Get(a.baseURL + "/historical")
		if err != nil {
			return nil, models.NewTransient(err, "equities historical request failed for %s", symbol)
		}
		if resp.StatusCode() == 404 {
			return nil, models.NewNotFound("no historical data for %s", symbol)
		}
		if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			return nil, models.NewTransient(nil, "equities upstream returned %d for %s", resp.StatusCode(), symbol)
		}

		bars := make([]models.HistoricalBar, 0, len(body))
		for _, b := range body {
			open, err1 := ParsePrice(b.Open)
			high, err2 := ParsePrice(b.High)
			low, err3 := ParsePrice(b.Low)
			closeP, err4 := ParsePrice(b.Close)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return nil, models.NewSchemaError("equities historical bar has unparseable OHLC for %s", symbol)
			}
			bars = append(bars, models.HistoricalBar{
				Timestamp: TimestampOrNow(b.Timestamp, equitiesTimestampLayout),
				Open:      open,
				High:      high,
				Low:       low,
				Close:     closeP,
				Volume:    b.Volume,
			})
		}
		return bars, nil
	})
}
