package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
	"treasury_mnav/pkg/core/extract"
)

// Store is the persistence boundary the engine reconciles against. The
// (ticker, accession number) uniqueness constraint behind ApplyFilingUpdate
// is the sole concurrency-control primitive: two racers on the same filing
// serialize there, and the loser's update is a no-op.
type Store interface {
	GetCompany(ctx context.Context, ticker string) (*CompanyState, error)
	InitCompany(ctx context.Context, ticker string, baseShares, initialHoldings int64) error
	LastProcessedFiling(ctx context.Context, ticker string) (*ProcessedFiling, error)
	// ApplyFilingUpdate appends the filing record and folds the update into
	// company totals as one transaction. Returns false without mutating when
	// the (ticker, accession) pair was already processed.
	ApplyFilingUpdate(ctx context.Context, u FilingUpdate) (bool, error)
	CountFilings(ctx context.Context, ticker string) (int, error)
}

// FilingSource locates and downloads filings. Satisfied by *edgar.Locator.
type FilingSource interface {
	LookupCIK(ctx context.Context, ticker string) (string, error)
	Latest8K(ctx context.Context, cik string, requireOtherEvents bool) (*edgar.FilingRef, error)
	Download(ctx context.Context, url string) (*edgar.FilingDocument, error)
}

// FactExtractor runs the extraction cascade. Satisfied by *extract.Extractor.
type FactExtractor interface {
	ExtractFacts(doc *edgar.FilingDocument, target extract.Target) extract.Facts
}

// AIFactExtractor is the optional model-assisted path.
type AIFactExtractor interface {
	ExtractFacts(ctx context.Context, doc *edgar.FilingDocument, target extract.Target) (extract.Facts, error)
}

// Engine is the per-ticker reconciliation state machine:
// Uninitialized -> Initialized -> {Unchanged, Updated}. It holds no state of
// its own across invocations.
type Engine struct {
	source    FilingSource
	extractor FactExtractor
	ai        AIFactExtractor // nil unless configured
	store     Store
}

// NewEngine wires the engine. ai may be nil.
func NewEngine(source FilingSource, extractor FactExtractor, ai AIFactExtractor, store Store) *Engine {
	return &Engine{source: source, extractor: extractor, ai: ai, store: store}
}

// Initialize creates the company row. The diluted-share total and the audit
// baseline both start at baseShares.
func (e *Engine) Initialize(ctx context.Context, tc config.TickerConfig, baseShares, initialHoldings int64) error {
	if _, err := e.source.LookupCIK(ctx, tc.Ticker); err != nil {
		return fmt.Errorf("cannot initialize %s: %w", tc.Ticker, err)
	}
	return e.store.InitCompany(ctx, tc.Ticker, baseShares, initialHoldings)
}

// Reconcile runs one pass for a ticker: locate the latest qualifying 8-K,
// decide whether it is new, extract and merge if so, and return current
// state. Extraction misses are absorbed (the filing is still marked
// processed, with zero deltas, so unparseable filings are not re-fetched
// forever); network failures propagate to the caller.
func (e *Engine) Reconcile(ctx context.Context, tc config.TickerConfig) (*CompanyState, Outcome, error) {
	state, err := e.store.GetCompany(ctx, tc.Ticker)
	if err != nil {
		return nil, Unchanged, err
	}

	last, err := e.store.LastProcessedFiling(ctx, tc.Ticker)
	if err != nil {
		return nil, Unchanged, err
	}

	cik, err := e.source.LookupCIK(ctx, tc.Ticker)
	if err != nil {
		return nil, Unchanged, err
	}

	ref, err := e.source.Latest8K(ctx, cik, !tc.AcceptAny8K)
	if errors.Is(err, edgar.ErrNoFiling) {
		fmt.Printf("[Reconcile] %s: no qualifying 8-K in recent index\n", tc.Ticker)
		return state, Unchanged, nil
	}
	if err != nil {
		return nil, Unchanged, err
	}

	accession := canonicalAccession(ref)
	if accession == "" {
		fmt.Printf("[Reconcile] %s: could not determine accession for %s\n", tc.Ticker, ref.URL)
		return state, Unchanged, nil
	}
	if last != nil && accession == last.AccessionNumber {
		fmt.Printf("[Reconcile] %s: latest 8-K %s already processed\n", tc.Ticker, accession)
		return state, Unchanged, nil
	}

	fmt.Printf("[Reconcile] %s: new 8-K %s, extracting\n", tc.Ticker, accession)
	doc, err := e.source.Download(ctx, ref.URL)
	if err != nil {
		return nil, Unchanged, err
	}

	facts := e.extractFacts(ctx, doc, tc)

	update := buildUpdate(tc.Ticker, accession, ref, facts, state)
	applied, err := e.store.ApplyFilingUpdate(ctx, update)
	if err != nil {
		return nil, Unchanged, err
	}
	if !applied {
		// A concurrent reconcile won the insert; our view is just stale.
		fmt.Printf("[Reconcile] %s: %s applied by a concurrent run\n", tc.Ticker, accession)
	}

	state, err = e.store.GetCompany(ctx, tc.Ticker)
	if err != nil {
		return nil, Unchanged, err
	}
	return state, Updated, nil
}

// extractFacts prefers the model-assisted path when configured, falling back
// to the strategy cascade if the model call fails.
func (e *Engine) extractFacts(ctx context.Context, doc *edgar.FilingDocument, tc config.TickerConfig) extract.Facts {
	target := extract.TargetFor(tc)
	if e.ai != nil {
		facts, err := e.ai.ExtractFacts(ctx, doc, target)
		if err == nil {
			return facts
		}
		fmt.Printf("[Reconcile] %s: model extraction unavailable (%v), using cascade\n", tc.Ticker, err)
	}
	return e.extractor.ExtractFacts(doc, target)
}

// buildUpdate translates extraction outcomes into the merge to apply.
// NotFound means "no update", never zero; a filing with no extractable facts
// is still recorded, with zero deltas.
func buildUpdate(ticker, accession string, ref *edgar.FilingRef, facts extract.Facts, state *CompanyState) FilingUpdate {
	u := FilingUpdate{
		Record: ProcessedFiling{
			Ticker:          ticker,
			AccessionNumber: accession,
			FilingDate:      filingDateOrNow(ref),
			FilingURL:       ref.URL,
		},
	}

	if facts.Holdings.Found {
		v := facts.Holdings.Value
		u.SetHoldings = &v
		u.Record.CryptoHoldings = v
	}
	if facts.Shares.Found {
		if facts.Shares.Basis == extract.Absolute {
			v := facts.Shares.Value
			u.SetShares = &v
			if delta := v - state.TotalDilutedShares; delta > 0 {
				u.Record.SharesAdded = delta
			}
		} else {
			u.AddShares = facts.Shares.Value
			u.Record.SharesAdded = facts.Shares.Value
		}
	}
	return u
}

func filingDateOrNow(ref *edgar.FilingRef) string {
	if ref.FilingDate != "" {
		return ref.FilingDate
	}
	return time.Now().Format("2006-01-02")
}

// canonicalAccession prefers the index-reported accession, falling back to
// parsing it out of the archive URL (which carries the 18-digit form).
func canonicalAccession(ref *edgar.FilingRef) string {
	if acc, ok := edgar.NormalizeAccession(ref.AccessionNumber); ok {
		return acc
	}
	if acc, ok := edgar.NormalizeAccession(ref.URL); ok {
		return acc
	}
	return ""
}
