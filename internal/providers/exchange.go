package providers

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// ExchangeAdapter fetches the raw option chain document for an index.
// Grounded on the option_chain() upstream call wrapped by
// fetch_and_save_option_chain (app/data_gather_stocks.py); NSE's own API
// requires a warmed-up session cookie, so a real client would first hit the
// exchange's homepage to collect cookies before calling the chain endpoint.
type ExchangeAdapter struct {
	client  *resty.Client
	baseURL string
	log     *logging.Logger
}

func NewExchangeAdapter(baseURL string, log *logging.Logger) *ExchangeAdapter {
	client := resty.New().SetTimeout(30 * time.Second).SetHeader("User-Agent", "Mozilla/5.0")
	return &ExchangeAdapter{client: client, baseURL: baseURL, log: log}
}

func (a *ExchangeAdapter) GetOptionChain(ctx context.Context, index string) (models.OptionChainRaw, error) {
	index = UpperSymbol(index)

	return offload(ctx, func() (models.OptionChainRaw, error) {
		var raw models.OptionChainRaw
		resp, err := a.client.R().
			SetContext(ctx).
			SetQueryParam("symbol", index).
			SetResult(&raw).
			Get(a.baseURL + "/option-chain")
		if err != nil {
			return models.OptionChainRaw{}, models.NewTransient(err, "option chain request failed for %s", index)
		}
		if resp.StatusCode() == 404 {
			return models.OptionChainRaw{}, models.NewNotFound("unknown index %s", index)
		}
		if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			return models.OptionChainRaw{}, models.NewTransient(nil, "option chain upstream returned %d for %s", resp.StatusCode(), index)
		}
		if len(raw.Records.Data) == 0 || len(raw.Records.ExpiryDates) == 0 {
			return models.OptionChainRaw{}, models.NewSchemaError("option chain response for %s missing records.data or records.expiryDates", index)
		}
		return raw, nil
	})
}
