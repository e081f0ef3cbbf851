package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedProvider returns a canned reply and records the prompt it saw.
type scriptedProvider struct {
	reply  string
	err    error
	prompt string
}

func (p *scriptedProvider) GenerateResponse(_ context.Context, prompt, _ string, _ map[string]interface{}) (string, error) {
	p.prompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func TestAIExtractorLabelFormat(t *testing.T) {
	provider := &scriptedProvider{reply: "Common ATM shares sold: 2,000,000\nAggregate ETH holdings: 50,000"}
	doc := plainDoc("Item 8.01 Other Events. Weekly update.")

	facts, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget)
	if err != nil {
		t.Fatalf("ExtractFacts: %v", err)
	}
	if !facts.Shares.Found || facts.Shares.Value != 2_000_000 || facts.Shares.Basis != Delta {
		t.Errorf("shares = %+v, want 2000000 delta", facts.Shares)
	}
	if !facts.Holdings.Found || facts.Holdings.Value != 50_000 || facts.Holdings.Basis != Absolute {
		t.Errorf("holdings = %+v, want 50000 absolute", facts.Holdings)
	}
}

func TestAIExtractorBracketedValues(t *testing.T) {
	provider := &scriptedProvider{reply: "Common ATM shares sold: [1,500,000]\nAggregate ETH holdings: [Not found]"}
	doc := plainDoc("Item 8.01 Other Events.")

	facts, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget)
	if err != nil {
		t.Fatalf("ExtractFacts: %v", err)
	}
	if !facts.Shares.Found || facts.Shares.Value != 1_500_000 {
		t.Errorf("shares = %+v, want 1500000", facts.Shares)
	}
	if facts.Holdings.Found {
		t.Errorf("bracketed Not found parsed as a value: %+v", facts.Holdings)
	}
}

// "Not found" is a successful reply reporting misses, never an error and
// never zero.
func TestAIExtractorNotFound(t *testing.T) {
	provider := &scriptedProvider{reply: "Common ATM shares sold: Not found\nAggregate ETH holdings: Not found"}
	doc := plainDoc("Item 8.01 Other Events.")

	facts, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget)
	if err != nil {
		t.Fatalf("ExtractFacts: %v", err)
	}
	if facts.Shares.Found || facts.Holdings.Found {
		t.Errorf("Not found replies must be misses: %+v", facts)
	}
}

func TestAIExtractorJSONFallback(t *testing.T) {
	provider := &scriptedProvider{reply: "```json\n{\"common_atm_shares_sold\": 2000000, \"aggregate_holdings\": 50000}\n```"}
	doc := plainDoc("Item 8.01 Other Events.")

	facts, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget)
	if err != nil {
		t.Fatalf("ExtractFacts: %v", err)
	}
	if !facts.Shares.Found || facts.Shares.Value != 2_000_000 {
		t.Errorf("shares = %+v, want 2000000 from JSON fallback", facts.Shares)
	}
	if !facts.Holdings.Found || facts.Holdings.Value != 50_000 {
		t.Errorf("holdings = %+v, want 50000 from JSON fallback", facts.Holdings)
	}
}

func TestAIExtractorProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("quota exceeded")}
	doc := plainDoc("Item 8.01 Other Events.")

	if _, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget); err == nil {
		t.Fatal("provider error must propagate")
	}
}

func TestAIExtractorRejectsImplausibleHoldings(t *testing.T) {
	provider := &scriptedProvider{reply: "Common ATM shares sold: Not found\nAggregate ETH holdings: 500"}
	doc := plainDoc("Item 8.01 Other Events.")

	facts, _ := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget)
	if facts.Holdings.Found {
		t.Errorf("implausible holdings accepted from model: %+v", facts.Holdings)
	}
}

func TestRelevantSectionExcerpt(t *testing.T) {
	text := "Cover page. Item 8.01 Other Events. The treasury update body. " +
		"Item 9.01 Financial Statements and Exhibits. Exhibit index."

	section := relevantSection(text)
	if !strings.Contains(section, "treasury update body") {
		t.Errorf("section missing the 8.01 body: %q", section)
	}
	if strings.Contains(section, "Exhibit index") || strings.Contains(section, "Cover page") {
		t.Errorf("section not bounded to Item 8.01: %q", section)
	}
}

// Characters whose lowercase mapping changes byte length (e.g. 'İ') must
// not shift the excerpt offsets.
func TestRelevantSectionMultibyteCaseMapping(t *testing.T) {
	text := "İstanbul Blockchain Holdings İnc. cover page. " +
		"Item 8.01 Other Events. The treasury update body. SIGNATURES Exhibit index."

	section := relevantSection(text)
	if !strings.Contains(section, "treasury update body") {
		t.Errorf("section missing the 8.01 body: %q", section)
	}
	if strings.Contains(section, "Exhibit index") || strings.Contains(section, "cover page") {
		t.Errorf("section not bounded to Item 8.01: %q", section)
	}
}

func TestRelevantSectionBudget(t *testing.T) {
	text := "item 8.01 other events " + strings.Repeat("x", 3*sectionBudget)
	if got := len(relevantSection(text)); got > sectionBudget {
		t.Errorf("section length = %d, want <= %d", got, sectionBudget)
	}
}

func TestAIExtractorPromptNamesTheAsset(t *testing.T) {
	provider := &scriptedProvider{reply: "Common ATM shares sold: Not found\nAggregate ETH holdings: Not found"}
	doc := plainDoc("Item 8.01 Other Events. Body.")

	if _, err := NewAIExtractor(provider).ExtractFacts(context.Background(), doc, ethTarget); err != nil {
		t.Fatalf("ExtractFacts: %v", err)
	}
	if !strings.Contains(provider.prompt, "Ethereum (ETH)") {
		t.Errorf("prompt does not name the asset: %q", provider.prompt)
	}
	if !strings.Contains(provider.prompt, "Aggregate ETH holdings:") {
		t.Errorf("prompt does not pin the reply format: %q", provider.prompt)
	}
}
