package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

func row(strike int64, ce, pe map[string]interface{}) models.FlatRow {
	return models.FlatRow{StrikePrice: decimal.NewFromInt(strike), CE: ce, PE: pe}
}

// S3 — Max pain: two strikes only.
func TestMaxPainScenarioS3(t *testing.T) {
	chain := models.OptionChainFlat{
		row(24800, map[string]interface{}{"openInterest": 100.0}, nil),
		row(24900, nil, map[string]interface{}{"openInterest": 100.0}),
	}
	strike, loss := MaxPain(chain)
	if strike == nil || *strike != 24800 {
		t.Fatalf("expected max pain strike 24800, got %v", strike)
	}
	if loss != 0 {
		t.Fatalf("expected loss 0 at 24800, got %d", loss)
	}
}

func TestMaxPainEmptyChain(t *testing.T) {
	strike, loss := MaxPain(nil)
	if strike != nil {
		t.Fatalf("expected nil strike for empty chain")
	}
	if loss != 0 {
		t.Fatalf("expected zero loss for empty chain")
	}
}

// S4 — PCR with missing CE_openInterest column entirely.
func TestPCRWithMissingCEColumn(t *testing.T) {
	chain := models.OptionChainFlat{
		row(100, nil, map[string]interface{}{"openInterest": 50.0}),
		row(200, nil, map[string]interface{}{"openInterest": 25.0}),
	}
	pcrOI, _ := PCR(chain)
	if pcrOI != 0.0 {
		t.Fatalf("expected pcr_by_oi == 0.0 with no CE data, got %v", pcrOI)
	}
}

func TestPCRComputesRatioRoundedToTwoDecimals(t *testing.T) {
	chain := models.OptionChainFlat{
		row(100, map[string]interface{}{"openInterest": 300.0}, map[string]interface{}{"openInterest": 100.0}),
	}
	pcrOI, _ := PCR(chain)
	if pcrOI != 0.33 {
		t.Fatalf("expected pcr_by_oi 0.33, got %v", pcrOI)
	}
}

func TestTopOITiesBreakTowardLowerStrike(t *testing.T) {
	chain := models.OptionChainFlat{
		row(200, map[string]interface{}{"openInterest": 50.0}, nil),
		row(100, map[string]interface{}{"openInterest": 50.0}, nil),
	}
	resistance, _ := TopOI(chain, 5)
	if len(resistance) != 2 || resistance[0].StrikePrice != 100 {
		t.Fatalf("expected lower strike first on tie, got %v", resistance)
	}
}

func TestTopOILargerThanRowCountReturnsAllRows(t *testing.T) {
	chain := models.OptionChainFlat{
		row(100, map[string]interface{}{"openInterest": 10.0}, nil),
	}
	resistance, _ := TopOI(chain, 50)
	if len(resistance) != 1 {
		t.Fatalf("expected all rows when top_n exceeds row count, got %d", len(resistance))
	}
}

// Testable property #3: increasing any open interest cannot decrease the
// minimum loss.
func TestMaxPainMonotonicUnderIncreasedOI(t *testing.T) {
	base := models.OptionChainFlat{
		row(100, map[string]interface{}{"openInterest": 10.0}, nil),
		row(200, nil, map[string]interface{}{"openInterest": 10.0}),
	}
	_, baseLoss := MaxPain(base)

	increased := models.OptionChainFlat{
		row(100, map[string]interface{}{"openInterest": 20.0}, nil),
		row(200, nil, map[string]interface{}{"openInterest": 10.0}),
	}
	_, increasedLoss := MaxPain(increased)

	if increasedLoss < baseLoss {
		t.Fatalf("increasing OI decreased the minimum loss: base=%d increased=%d", baseLoss, increasedLoss)
	}
}
