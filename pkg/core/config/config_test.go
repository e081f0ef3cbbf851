package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{Min: 1_000, Max: 2_000_000}

	// Exclusive on both edges.
	if b.Contains(1_000) || b.Contains(2_000_000) {
		t.Error("edge values must be rejected")
	}
	if !b.Contains(1_001) || !b.Contains(1_999_999) {
		t.Error("interior values must be accepted")
	}
}

func TestDefaultSharesWindow(t *testing.T) {
	// The share window accepts the 50M and 200M round figures themselves.
	if !DefaultSharesBounds.Contains(50_000_000) || !DefaultSharesBounds.Contains(200_000_000) {
		t.Error("50M and 200M must fall inside the share window")
	}
	if DefaultSharesBounds.Contains(49_999_999) || DefaultSharesBounds.Contains(200_000_001) {
		t.Error("values beyond the round figures must be rejected")
	}
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()

	for _, in := range []string{"SBET", "sbet", " Sbet "} {
		tc, ok := r.Lookup(in)
		if !ok {
			t.Fatalf("Lookup(%q) missed", in)
		}
		if tc.CryptoSymbol != "ETH" || tc.CoinGeckoID != "ethereum" {
			t.Errorf("Lookup(%q) = %+v", in, tc)
		}
	}

	if _, ok := r.Lookup("AAPL"); ok {
		t.Error("unconfigured ticker resolved")
	}
}

func TestEffectiveBoundsDefaults(t *testing.T) {
	tc, _ := DefaultRegistry().Lookup("MSTR")
	if tc.EffectiveHoldingsBounds() != DefaultHoldingsBounds {
		t.Errorf("holdings bounds = %+v", tc.EffectiveHoldingsBounds())
	}
	if tc.EffectiveSharesBounds() != DefaultSharesBounds {
		t.Errorf("shares bounds = %+v", tc.EffectiveSharesBounds())
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.yaml")
	yaml := `
tickers:
  - ticker: sbet
    name: Sharplink Gaming
    crypto: ETH
    crypto_name: Ethereum
    coingecko_id: ethereum
    holdings_bounds:
      min: 500
      max: 3000000
  - ticker: MSTR
    name: MicroStrategy
    crypto: BTC
    crypto_name: Bitcoin
    coingecko_id: bitcoin
    accept_any_8k: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	tc, ok := r.Lookup("SBET")
	if !ok {
		t.Fatal("lowercase ticker not normalized on load")
	}
	if got := tc.EffectiveHoldingsBounds(); got != (Bounds{Min: 500, Max: 3_000_000}) {
		t.Errorf("per-ticker bounds override lost: %+v", got)
	}
	if got := tc.EffectiveSharesBounds(); got != DefaultSharesBounds {
		t.Errorf("unset bounds must fall back to defaults: %+v", got)
	}

	mstr, _ := r.Lookup("MSTR")
	if !mstr.AcceptAny8K {
		t.Error("accept_any_8k flag lost on load")
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must error")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("tickers: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(empty); err == nil {
		t.Error("empty ticker list must error")
	}
}
