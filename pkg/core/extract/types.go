// Package extract pulls two numeric facts out of 8-K filing text: the
// company's reported crypto-holdings total and a shares-sold or diluted-share
// figure. Extraction runs as an ordered cascade of strategies; the first
// strategy producing a value inside the plausibility window wins.
package extract

import (
	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
)

// FactKind names the two figures the cascade looks for.
type FactKind int

const (
	CryptoHoldings FactKind = iota
	SharesSold
)

func (k FactKind) String() string {
	if k == CryptoHoldings {
		return "crypto_holdings"
	}
	return "shares_sold"
}

// Basis tags how an extracted share figure relates to the running total.
// "Sold N shares" style matches are per-filing deltas; "fully diluted shares
// outstanding" style matches are absolute totals and must replace rather
// than accumulate. Holdings are always Absolute.
type Basis int

const (
	Delta Basis = iota
	Absolute
)

func (b Basis) String() string {
	if b == Absolute {
		return "absolute"
	}
	return "delta"
}

// Result is the tagged outcome of one extraction attempt. A miss is
// Found=false, never a zero value.
type Result struct {
	Found bool
	Value int64
	Basis Basis
}

// NotFound is the canonical miss.
var NotFound = Result{}

// Target carries everything a strategy needs to know about what it is
// looking for: the crypto the treasury is denominated in and the per-ticker
// plausibility windows.
type Target struct {
	CryptoSymbol   string // e.g. "ETH"
	CryptoName     string // e.g. "Ethereum"
	HoldingsBounds config.Bounds
	SharesBounds   config.Bounds
}

// TargetFor builds a Target from a ticker configuration.
func TargetFor(tc config.TickerConfig) Target {
	return Target{
		CryptoSymbol:   tc.CryptoSymbol,
		CryptoName:     tc.CryptoName,
		HoldingsBounds: tc.EffectiveHoldingsBounds(),
		SharesBounds:   tc.EffectiveSharesBounds(),
	}
}

// Bounds returns the plausibility window for a fact kind.
func (t Target) Bounds(kind FactKind) config.Bounds {
	if kind == CryptoHoldings {
		return t.HoldingsBounds
	}
	return t.SharesBounds
}

// Strategy is one extraction approach. Strategies are pure with respect to
// the document: they read the shared views and return a tagged result.
type Strategy interface {
	Name() string
	Extract(doc *edgar.FilingDocument, target Target, kind FactKind) Result
}

// Facts bundles both extraction outcomes for one filing.
type Facts struct {
	Holdings Result
	Shares   Result
}
