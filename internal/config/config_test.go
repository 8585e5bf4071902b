package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, existed := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if existed {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "PORT", "FETCH_INTERVAL", "FETCH_SYMBOLS", "PROVIDER", "JWT_SECRET", "AUTH_REQUIRED", "ROUTER_CONFIG")

	cfg := Load()

	if cfg.Server.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Server.Port)
	}
	if cfg.Poller.Interval != 60*time.Second {
		t.Errorf("expected default poll interval 60s, got %v", cfg.Poller.Interval)
	}
	if cfg.Poller.DefaultSymbols != nil {
		t.Errorf("expected nil default symbol list, got %v", cfg.Poller.DefaultSymbols)
	}
	if cfg.JWT.Required {
		t.Error("expected auth to be optional by default")
	}
	if cfg.Router.ConfigPath != "router.yaml" {
		t.Errorf("expected default router config path, got %q", cfg.Router.ConfigPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t, "PORT", "FETCH_INTERVAL", "FETCH_SYMBOLS", "AUTH_REQUIRED")
	os.Setenv("PORT", "9001")
	os.Setenv("FETCH_INTERVAL", "15")
	os.Setenv("FETCH_SYMBOLS", "AAPL, BTCUSDT ,EURUSD")
	os.Setenv("AUTH_REQUIRED", "true")

	cfg := Load()

	if cfg.Server.Port != "9001" {
		t.Errorf("expected overridden port, got %q", cfg.Server.Port)
	}
	if cfg.Poller.Interval != 15*time.Second {
		t.Errorf("expected 15s poll interval, got %v", cfg.Poller.Interval)
	}
	want := []string{"AAPL", "BTCUSDT", "EURUSD"}
	if len(cfg.Poller.DefaultSymbols) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Poller.DefaultSymbols)
	}
	for i, s := range want {
		if cfg.Poller.DefaultSymbols[i] != s {
			t.Errorf("index %d: expected %q, got %q", i, s, cfg.Poller.DefaultSymbols[i])
		}
	}
	if !cfg.JWT.Required {
		t.Error("expected auth required to be true")
	}
}

func TestParseSecondsWithDefaultRejectsInvalid(t *testing.T) {
	clearEnv(t, "FETCH_INTERVAL")
	os.Setenv("FETCH_INTERVAL", "not-a-number")

	got := parseSecondsWithDefault("FETCH_INTERVAL", 30*time.Second)
	if got != 30*time.Second {
		t.Errorf("expected fallback to default on invalid input, got %v", got)
	}

	os.Setenv("FETCH_INTERVAL", "-5")
	got = parseSecondsWithDefault("FETCH_INTERVAL", 30*time.Second)
	if got != 30*time.Second {
		t.Errorf("expected fallback to default on non-positive input, got %v", got)
	}
}

func TestParseCSVListTrimsAndDropsEmpty(t *testing.T) {
	got := parseCSVList(" a, , b ,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
