package providers

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UpperSymbol canonicalizes a symbol on input and output, per spec.md
// §4.1 rule 1.
func UpperSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ParsePrice strips thousands separators from a numeric string upstream may
// have sent (e.g. "24,875.50") and parses it to decimal. Grounded on
// fetch_index_price's comma-stripping (app/data_gather_stocks.py).
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return decimal.NewFromString(cleaned)
}

// TimestampOrNow prefers an upstream-provided timestamp string parsed
// against the given layouts; on failure or if raw is empty, falls back to
// the adapter's local wall clock in UTC, per spec.md §4.1 rule 4.
func TimestampOrNow(raw string, layouts ...string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC()
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// ZeroFillChange normalizes an upstream percent/absolute change field that
// may be entirely absent: missing values are zero-filled, never omitted,
// per spec.md §4.1 rule 3.
func ZeroFillChange(present bool, value float64) float64 {
	if !present {
		return 0
	}
	return value
}

// timeFromMillis converts a Unix millisecond timestamp, the shape Binance's
// kline endpoint returns, to a UTC time.Time.
func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
