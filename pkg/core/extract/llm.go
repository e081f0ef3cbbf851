package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"treasury_mnav/pkg/core/edgar"
	"treasury_mnav/pkg/core/llm"
	"treasury_mnav/pkg/core/utils"
)

// sectionBudget caps how much filing text is sent to the model.
const sectionBudget = 12000

// sectionStart and sectionTerminator delimit the relevant span: the Item
// 8.01 heading up to the next Item heading or the signature block. Both are
// case-insensitive so offsets come from the original text; lowering a copy
// first can shift byte offsets for characters whose case mapping changes
// length.
var (
	sectionStart      = regexp.MustCompile(`(?i)item\s*8\.01.*other events`)
	sectionTerminator = regexp.MustCompile(`(?i)item\s+\d+\.\d+|signatures?`)
)

// AIExtractor is the model-assisted extraction path. It is an alternative to
// the strategy cascade, used when a provider is configured: the Item 8.01
// section is excerpted and the model is asked for both facts in a fixed
// two-line format. An explicit "Not found" token maps to a miss, never zero.
type AIExtractor struct {
	provider llm.Provider
}

// NewAIExtractor wraps a provider.
func NewAIExtractor(provider llm.Provider) *AIExtractor {
	return &AIExtractor{provider: provider}
}

// ExtractFacts excerpts the filing and queries the model. Network or model
// failures surface as errors; a parseable reply with "Not found" values is a
// successful call with misses.
func (a *AIExtractor) ExtractFacts(ctx context.Context, doc *edgar.FilingDocument, target Target) (Facts, error) {
	section := relevantSection(doc.Text())

	prompt := fmt.Sprintf(
		"You are an expert financial analyst. I will provide you with a section of an SEC filing. "+
			"Please extract the following two pieces of information from the document:\n\n"+
			"1. The number of Common ATM shares sold (if available).\n"+
			"2. The aggregate %s (%s) holdings reported by the company (if available).\n\n"+
			"Please provide your answer in the following format:\n\n"+
			"Common ATM shares sold: [number or 'Not found']\n"+
			"Aggregate %s holdings: [amount or 'Not found']\n\n"+
			"If either value is not explicitly stated in the document, say 'Not found' for that item. "+
			"Only use information found in the provided text.\n\n"+
			"Here is the relevant section of the SEC filing:\n\n%s",
		target.CryptoName, target.CryptoSymbol, target.CryptoSymbol, section)

	reply, err := a.provider.GenerateResponse(ctx, prompt, "", nil)
	if err != nil {
		return Facts{}, fmt.Errorf("model extraction failed: %w", err)
	}
	fmt.Printf("[Extract] model reply: %s\n", edgar.CollapseWhitespace(reply))

	return parseModelReply(reply, target), nil
}

// relevantSection returns the text between the Item 8.01 marker and the next
// section heading or signature block, truncated to the character budget. If
// the marker is absent the document head is used.
func relevantSection(text string) string {
	section := text
	if loc := sectionStart.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if end := sectionTerminator.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		section = strings.TrimSpace(rest)
	}
	if len(section) > sectionBudget {
		section = section[:sectionBudget]
	}
	return section
}

// parseModelReply reads the fixed two-line format, falling back to a lenient
// JSON parse for models that answer with an object despite instructions.
func parseModelReply(reply string, target Target) Facts {
	var facts Facts

	sharesRe := regexp.MustCompile(`(?i)Common ATM shares sold:\s*\[?([\d,]+|Not found)`)
	holdingsRe := regexp.MustCompile(`(?i)Aggregate ` + regexp.QuoteMeta(target.CryptoSymbol) + ` holdings:\s*\[?([\d,]+|Not found)`)

	if m := sharesRe.FindStringSubmatch(reply); m != nil {
		if v, ok := parseLabelValue(m[1]); ok && v > 0 {
			facts.Shares = Result{Found: true, Value: v, Basis: Delta}
		}
	}
	if m := holdingsRe.FindStringSubmatch(reply); m != nil {
		if v, ok := parseLabelValue(m[1]); ok && target.HoldingsBounds.Contains(v) {
			facts.Holdings = Result{Found: true, Value: v, Basis: Absolute}
		}
	}
	if facts.Shares.Found || facts.Holdings.Found {
		return facts
	}

	// JSON-shaped reply fallback.
	var obj struct {
		SharesSold     *int64 `json:"common_atm_shares_sold"`
		CryptoHoldings *int64 `json:"aggregate_holdings"`
	}
	if err := utils.ParseLenientJSON(utils.CleanMarkdown(reply), &obj); err == nil {
		if obj.SharesSold != nil && *obj.SharesSold > 0 {
			facts.Shares = Result{Found: true, Value: *obj.SharesSold, Basis: Delta}
		}
		if obj.CryptoHoldings != nil && target.HoldingsBounds.Contains(*obj.CryptoHoldings) {
			facts.Holdings = Result{Found: true, Value: *obj.CryptoHoldings, Basis: Absolute}
		}
	}
	return facts
}

// parseLabelValue parses a label value, treating the "Not found" token as a
// miss.
func parseLabelValue(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "not found") {
		return 0, false
	}
	return parseCommaInt(s)
}
