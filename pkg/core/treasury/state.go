// Package treasury owns the per-ticker reconciliation state machine and the
// MNAV metric arithmetic. The engine itself is stateless: every call
// re-reads persisted state, decides, and writes back, so each reconciliation
// is independently retryable.
package treasury

import (
	"errors"
	"time"
)

// ErrNotInitialized is returned when analyze/status runs before the ticker's
// explicit initialization call.
var ErrNotInitialized = errors.New("ticker not initialized")

// ErrUnsupportedTicker is returned for tickers absent from the static
// configuration. No network calls are attempted for these.
var ErrUnsupportedTicker = errors.New("ticker not supported")

// CompanyState is the persisted running total for one ticker.
type CompanyState struct {
	Ticker              string
	TotalDilutedShares  int64
	BaseShares          int64 // diluted-share count at initialization, audit baseline
	TotalCryptoHoldings int64
	LastUpdated         time.Time
}

// ProcessedFiling is one row of the append-only processed-filings log.
// A (ticker, accession number) pair appears at most once.
type ProcessedFiling struct {
	Ticker          string
	AccessionNumber string
	FilingDate      string
	FilingURL       string
	SharesAdded     int64 // delta this filing contributed to the running total
	CryptoHoldings  int64 // absolute holdings reported in this filing
	ProcessedAt     time.Time
}

// FilingUpdate is the merge a newly located filing applies to company state.
// Holdings replace (an absolute report); share deltas accumulate; an
// absolute share figure replaces the total, guarded to never decrease it.
type FilingUpdate struct {
	Record      ProcessedFiling
	SetHoldings *int64 // replace TotalCryptoHoldings when extraction found one
	AddShares   int64  // ATM sale delta to add
	SetShares   *int64 // absolute diluted-share total, wins over AddShares
}

// Outcome is the reconciliation transition taken for one call.
type Outcome int

const (
	Unchanged Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "unchanged"
}
