package subscriptions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	s := Load(filepath.Join(dir, "subscriptions.json"), []string{"RELIANCE.NS", "infy.ns"})

	got := s.Snapshot()
	want := map[string]bool{"RELIANCE.NS": true, "INFY.NS": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d symbols, got %v", len(want), got)
	}
	for _, sym := range got {
		if !want[sym] {
			t.Fatalf("unexpected symbol %q", sym)
		}
	}
}

func TestAddIsIdempotentCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	s := Load(filepath.Join(dir, "subscriptions.json"), nil)

	s.Add("infy.ns")
	s.Add("INFY.NS")

	got := s.Snapshot()
	if len(got) != 1 || got[0] != "INFY.NS" {
		t.Fatalf("expected single entry INFY.NS, got %v", got)
	}
}

func TestSaveWritesAtomicallyAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subscriptions.json")
	s := Load(path, nil)
	s.Add("BTCUSDT")
	s.Add("RELIANCE.NS")

	if err := s.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file to exist after Save: %v", err)
	}
	var doc models.Subscription
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("saved file is not valid json: %v", err)
	}
	if len(doc.Symbols) != 2 {
		t.Fatalf("expected 2 persisted symbols, got %d", len(doc.Symbols))
	}

	reloaded := Load(path, nil)
	if len(reloaded.Snapshot()) != 2 {
		t.Fatalf("expected reload to see saved symbols")
	}
}

func TestNoTempFileLeftBehindAfterSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subscriptions.json")
	s := Load(path, []string{"NIFTY"})
	if err := s.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "subscriptions.json" {
		t.Fatalf("expected only the final file, got %v", entries)
	}
}
