package extract

import (
	"fmt"

	"treasury_mnav/pkg/core/edgar"
)

// Extractor runs an ordered strategy list and stops at the first hit. The
// default order is: structured tables, scoped free-text patterns, then the
// whole-document fallback. AI-assisted extraction, when configured, is a
// separate top-level path owned by the caller rather than a cascade step.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor builds the default cascade.
func NewExtractor() *Extractor {
	return &Extractor{strategies: []Strategy{
		&TableStrategy{},
		&PatternStrategy{},
		&FullTextStrategy{},
	}}
}

// NewExtractorWithStrategies builds a cascade with an explicit order.
func NewExtractorWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// ExtractFact runs the cascade for one fact kind.
func (e *Extractor) ExtractFact(doc *edgar.FilingDocument, target Target, kind FactKind) Result {
	for _, s := range e.strategies {
		res := s.Extract(doc, target, kind)
		if res.Found {
			fmt.Printf("[Extract] %s: %d (%s) via %s\n", kind, res.Value, res.Basis, s.Name())
			return res
		}
	}
	return NotFound
}

// ExtractFacts runs the cascade for both fact kinds.
func (e *Extractor) ExtractFacts(doc *edgar.FilingDocument, target Target) Facts {
	return Facts{
		Holdings: e.ExtractFact(doc, target, CryptoHoldings),
		Shares:   e.ExtractFact(doc, target, SharesSold),
	}
}
