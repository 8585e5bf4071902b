package options

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// fakeFetcher serves a fixed raw chain regardless of index, letting tests
// focus on the flatten/band/persist stages.
type fakeFetcher struct {
	raw models.OptionChainRaw
	err error
}

func (f fakeFetcher) GetOptionChain(ctx context.Context, index string) (models.OptionChainRaw, error) {
	return f.raw, f.err
}

// gridChain builds a synthetic NIFTY-shaped chain: strikes from low to high
// in step increments, all on one expiry, each with a nominal open interest.
func gridChain(expiry string, low, high, step int64, underlying float64) models.OptionChainRaw {
	var rows []models.OptionChainRow
	for strike := low; strike <= high; strike += step {
		rows = append(rows, models.OptionChainRow{
			StrikePrice: float64(strike),
			ExpiryDate:  expiry,
			CE:          map[string]interface{}{"openInterest": 100.0},
			PE:          map[string]interface{}{"openInterest": 80.0},
		})
	}
	return models.OptionChainRaw{Records: models.OptionChainRecords{
		Data:            rows,
		ExpiryDates:     []string{expiry, "23-Sep-2025"},
		UnderlyingValue: underlying,
	}}
}

func newTestPipeline(t *testing.T, raw models.OptionChainRaw) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	p := New(fakeFetcher{raw: raw}, dir, nil, nil, logging.New("test", ""), metrics.New())
	return p, dir
}

// S2 — nearest-expiry fetch over a 24000..26000 step-25 grid with
// num_strikes=5 around an ATM that lands exactly on a strike.
func TestFetchNearestScenarioS2(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 26000, 25, 24875)
	p, _ := newTestPipeline(t, raw)

	snap, err := p.FetchNearest(context.Background(), "NIFTY", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Rows) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(snap.Rows))
	}
	first, _ := snap.Rows[0].StrikePrice.Float64()
	last, _ := snap.Rows[len(snap.Rows)-1].StrikePrice.Float64()
	if first != 24750 || last != 25000 {
		t.Fatalf("expected strike range [24750, 25000], got [%v, %v]", first, last)
	}
	if snap.Meta.ATMStrike != 24875 {
		t.Fatalf("expected atm_strike 24875, got %d", snap.Meta.ATMStrike)
	}
	if snap.Meta.Expiry != "16-Sep-2025" {
		t.Fatalf("expected nearest expiry selected, got %s", snap.Meta.Expiry)
	}
}

func TestFetchExpiryRejectsUnknownExpiry(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 26000, 25, 24875)
	p, _ := newTestPipeline(t, raw)

	_, err := p.FetchExpiry(context.Background(), "NIFTY", "30-Sep-2025", 5)
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected NotFound for an unlisted expiry, got %v", err)
	}
}

// ATM below all strikes: the window hugs the low end.
func TestBandATMBelowAllStrikes(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 24200, 25, 20000)
	p, _ := newTestPipeline(t, raw)

	snap, err := p.FetchNearest(context.Background(), "NIFTY", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := snap.Rows[0].StrikePrice.Float64()
	if first != 24000 {
		t.Fatalf("expected window to start at the lowest strike, got %v", first)
	}
	if snap.Meta.ATMStrike != 24000 {
		t.Fatalf("expected atm_strike to clamp to the lowest strike, got %d", snap.Meta.ATMStrike)
	}
}

// ATM above all strikes: the window hugs the high end.
func TestBandATMAboveAllStrikes(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 24200, 25, 99999)
	p, _ := newTestPipeline(t, raw)

	snap, err := p.FetchNearest(context.Background(), "NIFTY", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last, _ := snap.Rows[len(snap.Rows)-1].StrikePrice.Float64()
	if last != 24200 {
		t.Fatalf("expected window to end at the highest strike, got %v", last)
	}
	if snap.Meta.ATMStrike != 24200 {
		t.Fatalf("expected atm_strike to clamp to the highest strike, got %d", snap.Meta.ATMStrike)
	}
}

func TestRowsMissingBothSidesAreDropped(t *testing.T) {
	raw := models.OptionChainRaw{Records: models.OptionChainRecords{
		Data: []models.OptionChainRow{
			{StrikePrice: 100.0, ExpiryDate: "16-Sep-2025", CE: map[string]interface{}{"openInterest": 1.0}},
			{StrikePrice: 200.0, ExpiryDate: "16-Sep-2025"}, // neither CE nor PE
		},
		ExpiryDates:     []string{"16-Sep-2025"},
		UnderlyingValue: 100,
	}}
	p, _ := newTestPipeline(t, raw)

	snap, err := p.FetchNearest(context.Background(), "NIFTY", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Rows) != 1 {
		t.Fatalf("expected the CE/PE-less row to be dropped, got %d rows", len(snap.Rows))
	}
}

func TestPersistWritesCSVAndJSONAtomically(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 24100, 50, 24050)
	p, dir := newTestPipeline(t, raw)

	snap, err := p.FetchNearest(context.Background(), "NIFTY", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var sawCSV, sawJSON, sawTemp bool
	var jsonPath string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".csv":
			sawCSV = true
		case ".json":
			sawJSON = true
			jsonPath = filepath.Join(dir, e.Name())
		case ".tmp":
			sawTemp = true
		}
	}
	if !sawCSV || !sawJSON {
		t.Fatalf("expected both a csv and json snapshot file, entries=%v", entries)
	}
	if sawTemp {
		t.Fatalf("expected no leftover temp files after persist, entries=%v", entries)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json metadata: %v", err)
	}
	var meta models.SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if meta.IndexName != "NIFTY" || meta.TotalStrikes != len(snap.Rows) {
		t.Fatalf("persisted metadata mismatch: %+v", meta)
	}
}

func TestLiveAnalyticsDoesNotPersist(t *testing.T) {
	raw := gridChain("16-Sep-2025", 24000, 24100, 50, 24050)
	p, dir := newTestPipeline(t, raw)

	_, underlying, err := p.LiveAnalytics(context.Background(), "NIFTY", "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if underlying != 24050 {
		t.Fatalf("expected underlying value passthrough, got %v", underlying)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no filesystem writes from a live analytics call, entries=%v", entries)
	}
}
