package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
)

// pattern is one regex in the cascade, ordered most specific first. checkBounds
// is off for the phrase-anchored ATM sale patterns: "sold a total of N shares"
// reports a per-filing delta that is legitimately far below any plausible
// diluted-share total, and the phrase itself is specific enough to trust.
type pattern struct {
	re          *regexp.Regexp
	basis       Basis
	checkBounds bool
}

// holdingsPatterns builds the ordered holdings pattern list for a crypto
// symbol. All holdings figures are absolute reported totals.
func holdingsPatterns(symbol string) []pattern {
	sym := regexp.QuoteMeta(symbol)
	return []pattern{
		{re: regexp.MustCompile(`(?i)aggregate ` + sym + ` holdings (?:were|was|totaled)?\s*([\d,]+)`), basis: Absolute, checkBounds: true},
		{re: regexp.MustCompile(`(?i)` + sym + ` holdings (?:were|rose to|increased? to|totaled|:)?\s*([\d,]+)`), basis: Absolute, checkBounds: true},
		{re: regexp.MustCompile(`(?i)holdings rose to\s*([\d,]+)\s*` + sym), basis: Absolute, checkBounds: true},
		{re: regexp.MustCompile(`(?i)holdings.*?([\d,]+)\s*` + sym), basis: Absolute, checkBounds: true},
		{re: regexp.MustCompile(`(?i)` + sym + ` holdings.*?([\d,]+)`), basis: Absolute, checkBounds: true},
	}
}

// sharesPatterns is the ordered share-figure pattern list. ATM sale phrasing
// yields deltas; "diluted"/"outstanding" phrasing yields absolute totals.
var sharesPatterns = []pattern{
	{re: regexp.MustCompile(`(?i)sold an? (?:aggregate|total) of\s*([\d,]+)\s*shares`), basis: Delta},
	{re: regexp.MustCompile(`(?i)sold a total of\s*([\d,]+)\s*shares`), basis: Delta},
	{re: regexp.MustCompile(`(?i)assumed diluted shares outstanding.*?([\d,]{6,})`), basis: Absolute, checkBounds: true},
	{re: regexp.MustCompile(`(?i)fully diluted.*?([\d,]{6,})`), basis: Absolute, checkBounds: true},
	{re: regexp.MustCompile(`(?i)shares outstanding.*?([\d,]{6,})`), basis: Absolute, checkBounds: true},
}

func patternsFor(target Target, kind FactKind) []pattern {
	if kind == CryptoHoldings {
		return holdingsPatterns(target.CryptoSymbol)
	}
	return sharesPatterns
}

// nodeKeyword reports whether a text node is topical for the fact kind.
func nodeKeyword(text string, target Target, kind FactKind) bool {
	lower := strings.ToLower(text)
	if kind == CryptoHoldings {
		return strings.Contains(lower, strings.ToLower(target.CryptoSymbol))
	}
	return strings.Contains(lower, "diluted") || strings.Contains(lower, "shares")
}

// candidate is one plausible match with its basis tag.
type candidate struct {
	value int64
	basis Basis
}

// PatternStrategy runs the regex cascade against individual HTML text nodes
// containing a topical keyword. All plausible candidates are collected;
// phrase-anchored delta matches are preferred, then the maximum plausible
// value (restated figures grow monotonically across amendments, and spurious
// small matches are rejected by the range bound, not by taking the minimum).
type PatternStrategy struct{}

func (s *PatternStrategy) Name() string { return "pattern" }

func (s *PatternStrategy) Extract(doc *edgar.FilingDocument, target Target, kind FactKind) Result {
	tree := doc.Tree()
	if tree == nil {
		return NotFound
	}

	bounds := target.Bounds(kind)
	patterns := patternsFor(target, kind)
	var candidates []candidate

	visitTextNodes(tree, func(text string) {
		if !nodeKeyword(text, target, kind) {
			return
		}
		candidates = append(candidates, matchPatterns(text, patterns, bounds)...)
		// Bare-number sweep within topical nodes: any comma-grouped number
		// inside the plausibility window counts as an absolute candidate.
		candidates = append(candidates, bareNumbers(text, kind, bounds)...)
	})

	return pickCandidate(candidates)
}

// visitTextNodes calls fn for every text node in the tree.
func visitTextNodes(tree *goquery.Document, fn func(text string)) {
	tree.Find("*").Each(func(_ int, sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if text := strings.TrimSpace(c.Text()); text != "" {
					fn(text)
				}
			}
		})
	})
}

// matchPatterns collects all pattern matches in one text span.
func matchPatterns(text string, patterns []pattern, bounds config.Bounds) []candidate {
	var out []candidate
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v, ok := parseCommaInt(m[1])
			if !ok || v <= 0 {
				continue
			}
			if p.checkBounds && !bounds.Contains(v) {
				continue
			}
			out = append(out, candidate{value: v, basis: p.basis})
		}
	}
	return out
}

var bareNumberRe = regexp.MustCompile(`[\d,]+`)
var bareLongNumberRe = regexp.MustCompile(`[\d,]{6,}`)

// bareNumbers sweeps a topical span for in-bounds numbers with no label at
// all. Share sweeps only consider 6+ character groups to skip small counts.
func bareNumbers(text string, kind FactKind, bounds config.Bounds) []candidate {
	re := bareNumberRe
	if kind == SharesSold {
		re = bareLongNumberRe
	}
	var out []candidate
	for _, m := range re.FindAllString(text, -1) {
		if v, ok := parseCommaInt(m); ok && bounds.Contains(v) {
			out = append(out, candidate{value: v, basis: Absolute})
		}
	}
	return out
}

// pickCandidate prefers delta matches (phrase-anchored, most specific), then
// takes the maximum value within each group.
func pickCandidate(candidates []candidate) Result {
	best := Result{}
	for _, c := range candidates {
		if !best.Found ||
			(c.basis == Delta && best.Basis == Absolute) ||
			(c.basis == best.Basis && c.value > best.Value) {
			best = Result{Found: true, Value: c.value, Basis: c.basis}
		}
	}
	return best
}
