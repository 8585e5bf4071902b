package providers

import "testing"

func TestParsePriceStripsThousandsSeparators(t *testing.T) {
	got, err := ParsePrice("24,875.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "24875.5" {
		t.Fatalf("got %s, want 24875.5", got.String())
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	if _, err := ParsePrice("not-a-number"); err == nil {
		t.Fatalf("expected error for unparseable price")
	}
}

func TestUpperSymbolTrimsAndUppercases(t *testing.T) {
	if got := UpperSymbol("  infy.ns "); got != "INFY.NS" {
		t.Fatalf("got %q, want INFY.NS", got)
	}
}

func TestUpperSymbolIsIdempotent(t *testing.T) {
	s := UpperSymbol("btcusdt")
	if UpperSymbol(s) != s {
		t.Fatalf("UpperSymbol is not idempotent for %q", s)
	}
}

func TestTimestampOrNowFallsBackWhenEmpty(t *testing.T) {
	got := TimestampOrNow("")
	if got.IsZero() {
		t.Fatalf("expected non-zero fallback timestamp")
	}
}

func TestZeroFillChange(t *testing.T) {
	if got := ZeroFillChange(false, 5.5); got != 0 {
		t.Fatalf("expected 0 when absent, got %v", got)
	}
	if got := ZeroFillChange(true, 5.5); got != 5.5 {
		t.Fatalf("expected 5.5 when present, got %v", got)
	}
}
