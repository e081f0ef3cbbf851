// Package config holds the static ticker configuration: which crypto each
// tracked company's treasury is denominated in, plus per-ticker extraction
// bounds. The registry is loaded once and passed explicitly to the components
// that need it; nothing here is ambient state.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Bounds is the plausibility window for an extracted figure. Values at or
// outside the window are rejected as coincidental matches (page numbers,
// years, exhibit numbers).
type Bounds struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// Contains reports whether v falls strictly inside the window.
func (b Bounds) Contains(v int64) bool {
	return v > b.Min && v < b.Max
}

// Reference calibration: the holdings window rejects page-number noise for an
// ETH-scale treasury; the shares window reflects mid-cap issuer share counts.
var (
	DefaultHoldingsBounds = Bounds{Min: 1_000, Max: 2_000_000}
	DefaultSharesBounds   = Bounds{Min: 49_999_999, Max: 200_000_001}
)

// TickerConfig describes one tracked company.
type TickerConfig struct {
	Ticker         string  `yaml:"ticker"`
	Name           string  `yaml:"name"`
	CryptoSymbol   string  `yaml:"crypto"`
	CryptoName     string  `yaml:"crypto_name"`
	CoinGeckoID    string  `yaml:"coingecko_id"`
	HoldingsBounds *Bounds `yaml:"holdings_bounds,omitempty"`
	SharesBounds   *Bounds `yaml:"shares_bounds,omitempty"`
	// AcceptAny8K takes the first 8-K in the index without requiring the
	// Item 8.01 Other Events section marker.
	AcceptAny8K bool `yaml:"accept_any_8k,omitempty"`
}

// EffectiveHoldingsBounds returns the per-ticker override or the default.
func (tc TickerConfig) EffectiveHoldingsBounds() Bounds {
	if tc.HoldingsBounds != nil {
		return *tc.HoldingsBounds
	}
	return DefaultHoldingsBounds
}

// EffectiveSharesBounds returns the per-ticker override or the default.
func (tc TickerConfig) EffectiveSharesBounds() Bounds {
	if tc.SharesBounds != nil {
		return *tc.SharesBounds
	}
	return DefaultSharesBounds
}

// Registry maps uppercase ticker symbols to their configuration.
type Registry struct {
	tickers map[string]TickerConfig
}

// NewRegistry builds a registry from the given configs. Ticker symbols are
// normalized to uppercase.
func NewRegistry(configs []TickerConfig) *Registry {
	m := make(map[string]TickerConfig, len(configs))
	for _, tc := range configs {
		tc.Ticker = strings.ToUpper(strings.TrimSpace(tc.Ticker))
		m[tc.Ticker] = tc
	}
	return &Registry{tickers: m}
}

// Lookup returns the configuration for a ticker (case-insensitive).
func (r *Registry) Lookup(ticker string) (TickerConfig, bool) {
	tc, ok := r.tickers[strings.ToUpper(strings.TrimSpace(ticker))]
	return tc, ok
}

// Tickers returns the supported ticker symbols.
func (r *Registry) Tickers() []string {
	out := make([]string, 0, len(r.tickers))
	for t := range r.tickers {
		out = append(out, t)
	}
	return out
}

// LoadRegistry reads a YAML ticker configuration file.
//
// File format:
//
//	tickers:
//	  - ticker: SBET
//	    name: Sharplink Gaming
//	    crypto: ETH
//	    crypto_name: Ethereum
//	    coingecko_id: ethereum
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker config: %w", err)
	}

	var file struct {
		Tickers []TickerConfig `yaml:"tickers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ticker config: %w", err)
	}
	if len(file.Tickers) == 0 {
		return nil, fmt.Errorf("ticker config %s defines no tickers", path)
	}

	return NewRegistry(file.Tickers), nil
}

// DefaultRegistry returns the built-in reference configuration, used when no
// config file is present.
func DefaultRegistry() *Registry {
	return NewRegistry([]TickerConfig{
		{Ticker: "SBET", Name: "Sharplink Gaming", CryptoSymbol: "ETH", CryptoName: "Ethereum", CoinGeckoID: "ethereum"},
		{Ticker: "MSTR", Name: "MicroStrategy", CryptoSymbol: "BTC", CryptoName: "Bitcoin", CoinGeckoID: "bitcoin"},
		{Ticker: "UPXI", Name: "Upexi Inc", CryptoSymbol: "SOL", CryptoName: "Solana", CoinGeckoID: "solana"},
	})
}
