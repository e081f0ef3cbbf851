package extract

import (
	"regexp"

	"treasury_mnav/pkg/core/edgar"
)

var commaGrouped = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)

// FullTextStrategy is the last cascade step: the same ordered pattern list
// applied to the whole canonical text (first match wins), falling back to the
// largest comma-grouped number inside the plausibility window anywhere in the
// document. It is the only strategy that works on non-HTML payloads.
type FullTextStrategy struct{}

func (s *FullTextStrategy) Name() string { return "fulltext" }

func (s *FullTextStrategy) Extract(doc *edgar.FilingDocument, target Target, kind FactKind) Result {
	text := doc.Text()
	bounds := target.Bounds(kind)

	for _, p := range patternsFor(target, kind) {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := parseCommaInt(m[1])
		if !ok || v <= 0 {
			continue
		}
		if p.checkBounds && !bounds.Contains(v) {
			continue
		}
		return Result{Found: true, Value: v, Basis: p.basis}
	}

	// Last resort: largest plausible comma-grouped number anywhere.
	var best int64
	for _, m := range commaGrouped.FindAllString(text, -1) {
		if v, ok := parseCommaInt(m); ok && bounds.Contains(v) && v > best {
			best = v
		}
	}
	if best > 0 {
		return Result{Found: true, Value: best, Basis: Absolute}
	}
	return NotFound
}
