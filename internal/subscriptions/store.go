// Package subscriptions implements the subscription store (C4): a durable
// list of symbols to poll, persisted as a small JSON document and rewritten
// atomically. Grounded on the original's load_subscriptions/save_subscriptions
// (app/fetcher.py) and the atomic-rename discipline of
// fetch_and_save_option_chain (app/data_gather_stocks.py).
package subscriptions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

// Store holds the current subscription list in memory, backed by a JSON
// document on disk. All mutations are serialized through the store's mutex;
// persistence is atomic (write-to-temp-then-rename).
type Store struct {
	mu      sync.Mutex
	path    string
	symbols map[string]struct{} // canonical upper-case symbol set
}

// Load reads path if it exists; otherwise falls back to defaultSymbols
// (typically FETCH_SYMBOLS). Duplicates are collapsed case-insensitively.
func Load(path string, defaultSymbols []string) *Store {
	s := &Store{path: path, symbols: make(map[string]struct{})}

	raw, err := os.ReadFile(path)
	if err != nil {
		for _, sym := range defaultSymbols {
			s.addLocked(sym)
		}
		return s
	}

	var doc models.Subscription
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Symbols) == 0 {
		for _, sym := range defaultSymbols {
			s.addLocked(sym)
		}
		return s
	}
	for _, sym := range doc.Symbols {
		s.addLocked(sym)
	}
	return s
}

func (s *Store) addLocked(sym string) {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	if sym == "" {
		return
	}
	s.symbols[sym] = struct{}{}
}

// Add inserts symbol into the subscription set. Idempotent: subscribing the
// same symbol (any case) twice yields one entry.
func (s *Store) Add(symbol string) {
	s.mu.Lock()
	s.addLocked(symbol)
	s.mu.Unlock()
}

// Snapshot returns the current subscription list in an unspecified stable
// order, safe to iterate without holding the store's lock.
func (s *Store) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Save persists the current subscription set atomically: write to a temp
// file in the same directory, then rename over the final path.
func (s *Store) Save() error {
	s.mu.Lock()
	symbols := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		symbols = append(symbols, sym)
	}
	s.mu.Unlock()

	doc := models.Subscription{Symbols: symbols}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".subscriptions-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
