package providers

import (
	"context"
	"strconv"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// CryptoAdapter is the crypto-spot venue adapter (spec.md §6: "/ticker/price,
// /klines, /ticker/24hr, and batch price endpoints"), grounded on
// app/providers/binance_provider.py and wired to the real
// github.com/adshao/go-binance/v2 spot client rather than a hand-rolled REST
// client.
type CryptoAdapter struct {
	client *binance.Client
	log    *logging.Logger
}

func NewCryptoAdapter(apiKey, apiSecret string, log *logging.Logger) *CryptoAdapter {
	return &CryptoAdapter{
		client: binance.NewClient(apiKey, apiSecret),
		log:    log,
	}
}

func (a *CryptoAdapter) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = UpperSymbol(symbol)

	return offload(ctx, func() (models.Quote, error) {
		prices, err := a.client.NewListPricesService().Symbol(symbol).Do(ctx)
		if err != nil {
			return models.Quote{}, classifyBinanceError(err, symbol)
		}
		if len(prices) == 0 {
			return models.Quote{}, models.NewNotFound("unknown crypto symbol %s", symbol)
		}

		price, err := decimal.NewFromString(prices[0].Price)
		if err != nil {
			return models.Quote{}, models.NewSchemaError("crypto adapter got unparseable price for %s: %v", symbol, err)
		}

		stats, statErr := a.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
		var pct float64
		var absChange decimal.Decimal
		if statErr == nil && len(stats) > 0 {
			pct, _ = strconv.ParseFloat(stats[0].PriceChangePercent, 64)
			absChange, _ = decimal.NewFromString(stats[0].PriceChange)
		}

		return models.Quote{
			Symbol:         symbol,
			Price:          price,
			PercentChange:  ZeroFillChange(statErr == nil, pct),
			AbsoluteChange: absChange,
			Timestamp:      TimestampOrNow(""),
		}, nil
	})
}

func (a *CryptoAdapter) GetHistorical(ctx context.Context, symbol, period, interval string) ([]models.HistoricalBar, error) {
	symbol = UpperSymbol(symbol)
	if interval == "" {
		interval = "1h"
	}

	return offload(ctx, func() ([]models.HistoricalBar, error) {
		klines, err := a.client.NewKlinesService().Symbol(symbol).Interval(interval).Limit(500).Do(ctx)
		if err != nil {
			return nil, classifyBinanceError(err, symbol)
		}
		bars := make([]models.HistoricalBar, 0, len(klines))
		for _, k := range klines {
			open, err1 := decimal.NewFromString(k.Open)
			high, err2 := decimal.NewFromString(k.High)
			low, err3 := decimal.NewFromString(k.Low)
			closeP, err4 := decimal.NewFromString(k.Close)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return nil, models.NewSchemaError("crypto kline has unparseable OHLC for %s", symbol)
			}
			volume, _ := strconv.ParseInt(k.Volume, 10, 64)
			bars = append(bars, models.HistoricalBar{
				Timestamp: timeFromMillis(k.OpenTime),
				Open:      open,
				High:      high,
				Low:       low,
				Close:     closeP,
				Volume:    volume,
			})
		}
		return bars, nil
	})
}

// Get24hStats implements the crypto adapter's capability not shared by the
// generic QuoteProvider contract (spec.md §4.1).
func (a *CryptoAdapter) Get24hStats(ctx context.Context, symbol string) (models.Stats24h, error) {
	symbol = UpperSymbol(symbol)

	return offload(ctx, func() (models.Stats24h, error) {
		stats, err := a.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
		if err != nil {
			return models.Stats24h{}, classifyBinanceError(err, symbol)
		}
		if len(stats) == 0 {
			return models.Stats24h{}, models.NewNotFound("unknown crypto symbol %s", symbol)
		}
		s := stats[0]
		priceChange, _ := decimal.NewFromString(s.PriceChange)
		pct, _ := strconv.ParseFloat(s.PriceChangePercent, 64)
		high, _ := decimal.NewFromString(s.HighPrice)
		low, _ := decimal.NewFromString(s.LowPrice)
		vol, _ := decimal.NewFromString(s.Volume)
		return models.Stats24h{
			Symbol:             symbol,
			PriceChange:        priceChange,
			PriceChangePercent: pct,
			HighPrice:          high,
			LowPrice:           low,
			Volume:             vol,
		}, nil
	})
}

// GetMultiQuote batches several symbols into Binance's all-prices endpoint
// and filters down to the requested set, satisfying the "batch price
// endpoints" capability from spec.md §6.
func (a *CryptoAdapter) GetMultiQuote(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[UpperSymbol(s)] = true
	}

	return offload(ctx, func() (map[string]models.Quote, error) {
		prices, err := a.client.NewListPricesService().Do(ctx)
		if err != nil {
			return nil, models.NewTransient(err, "crypto multi-quote request failed")
		}
		out := make(map[string]models.Quote, len(wanted))
		now := TimestampOrNow("")
		for _, p := range prices {
			sym := UpperSymbol(p.Symbol)
			if !wanted[sym] {
				continue
			}
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				continue
			}
			out[sym] = models.Quote{Symbol: sym, Price: price, Timestamp: now}
		}
		return out, nil
	})
}

func classifyBinanceError(err error, symbol string) error {
	if apiErr, ok := err.(*common.APIError); ok {
		switch {
		case apiErr.Code == -1121: // invalid symbol
			return models.NewNotFound("unknown crypto symbol %s", symbol)
		case apiErr.Code == -2014 || apiErr.Code == -2015: // bad api key/permission
			return models.NewPermanent(err, "crypto adapter rejected credentials for %s", symbol)
		default:
			return models.NewTransient(err, "crypto upstream error for %s", symbol)
		}
	}
	return models.NewTransient(err, "crypto request failed for %s", symbol)
}
