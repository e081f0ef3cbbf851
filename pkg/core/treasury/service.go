package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/prices"
)

// Analysis is the full MNAV result for one ticker.
type Analysis struct {
	Ticker           string    `json:"ticker"`
	CryptoType       string    `json:"crypto_type"`
	CryptoPrice      float64   `json:"crypto_price"`
	StockPrice       float64   `json:"stock_price"`
	CryptoHoldings   int64     `json:"crypto_holdings"`
	DilutedShares    int64     `json:"diluted_shares"`
	Metrics          Metrics   `json:"metrics"`
	Outcome          string    `json:"outcome"`
	LastUpdated      time.Time `json:"last_updated"`
	FilingsProcessed int       `json:"filings_processed"`
}

// Status summarizes persisted state without touching the network.
type Status struct {
	Initialized        bool   `json:"initialized"`
	Ticker             string `json:"ticker"`
	CryptoType         string `json:"crypto_type,omitempty"`
	TotalDilutedShares int64  `json:"total_diluted_shares,omitempty"`
	BaseShares         int64  `json:"base_shares,omitempty"`
	CryptoHoldings     int64  `json:"crypto_holdings,omitempty"`
	LastUpdated        string `json:"last_updated,omitempty"`
	FilingsProcessed   int    `json:"filings_processed,omitempty"`
	LastFilingAcc      string `json:"last_filing_accession,omitempty"`
}

// Service is the operation surface exposed to the API and CLI: Initialize,
// Analyze, Status. Either the full analysis is returned or an error; there
// is no partial-success shape.
type Service struct {
	registry *config.Registry
	engine   *Engine
	store    Store
	prices   prices.Source
}

// NewService wires the service.
func NewService(registry *config.Registry, engine *Engine, store Store, priceSource prices.Source) *Service {
	return &Service{registry: registry, engine: engine, store: store, prices: priceSource}
}

// Config resolves a ticker against the injected registry.
func (s *Service) Config(ticker string) (config.TickerConfig, error) {
	tc, ok := s.registry.Lookup(ticker)
	if !ok {
		return config.TickerConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedTicker, ticker)
	}
	return tc, nil
}

// SupportedTickers lists the configured tickers.
func (s *Service) SupportedTickers() []string {
	return s.registry.Tickers()
}

// Initialize registers a ticker with its base diluted-share count and
// optional starting holdings.
func (s *Service) Initialize(ctx context.Context, ticker string, baseShares, initialHoldings int64) (config.TickerConfig, error) {
	tc, err := s.Config(ticker)
	if err != nil {
		return config.TickerConfig{}, err
	}
	if baseShares < 0 || initialHoldings < 0 {
		return config.TickerConfig{}, fmt.Errorf("base shares and initial holdings must be non-negative")
	}
	if err := s.engine.Initialize(ctx, tc, baseShares, initialHoldings); err != nil {
		return config.TickerConfig{}, err
	}
	return tc, nil
}

// Analyze reconciles filings for the ticker, fetches live prices, and
// derives the MNAV metrics.
func (s *Service) Analyze(ctx context.Context, ticker string) (*Analysis, error) {
	tc, err := s.Config(ticker)
	if err != nil {
		return nil, err
	}

	state, outcome, err := s.engine.Reconcile(ctx, tc)
	if err != nil {
		return nil, err
	}

	cryptoPrice, err := s.prices.CryptoPriceUSD(ctx, tc.CoinGeckoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s price: %w", tc.CryptoSymbol, err)
	}
	stockPrice, err := s.prices.StockPriceUSD(ctx, tc.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s stock price: %w", tc.Ticker, err)
	}

	count, err := s.store.CountFilings(ctx, tc.Ticker)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Ticker:           tc.Ticker,
		CryptoType:       tc.CryptoSymbol,
		CryptoPrice:      cryptoPrice,
		StockPrice:       stockPrice,
		CryptoHoldings:   state.TotalCryptoHoldings,
		DilutedShares:    state.TotalDilutedShares,
		Metrics:          ComputeMetrics(state.TotalCryptoHoldings, cryptoPrice, state.TotalDilutedShares, stockPrice),
		Outcome:          outcome.String(),
		LastUpdated:      state.LastUpdated,
		FilingsProcessed: count,
	}, nil
}

// GetStatus returns the persisted state summary, or an uninitialized marker.
func (s *Service) GetStatus(ctx context.Context, ticker string) (*Status, error) {
	tc, err := s.Config(ticker)
	if err != nil {
		return nil, err
	}

	state, err := s.store.GetCompany(ctx, tc.Ticker)
	if errors.Is(err, ErrNotInitialized) {
		return &Status{Initialized: false, Ticker: tc.Ticker}, nil
	}
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountFilings(ctx, tc.Ticker)
	if err != nil {
		return nil, err
	}
	var lastAcc string
	if last, err := s.store.LastProcessedFiling(ctx, tc.Ticker); err == nil && last != nil {
		lastAcc = last.AccessionNumber
	}

	return &Status{
		Initialized:        true,
		Ticker:             tc.Ticker,
		CryptoType:         tc.CryptoSymbol,
		TotalDilutedShares: state.TotalDilutedShares,
		BaseShares:         state.BaseShares,
		CryptoHoldings:     state.TotalCryptoHoldings,
		LastUpdated:        state.LastUpdated.Format("2006-01-02 15:04:05"),
		FilingsProcessed:   count,
		LastFilingAcc:      lastAcc,
	}, nil
}
