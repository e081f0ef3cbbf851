package edgar

import (
	"strings"
	"testing"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Item   8.01\n\tOther Events  ", "Item 8.01 Other Events"},
		{"already clean", "already clean"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CollapseWhitespace(c.in); got != c.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Aggregate ETH Holdings", "aggregateethholdings"},
		{"Shares\nSold (1)", "sharessold1"},
		{"ITEM 8.01", "item801"},
	}
	for _, c := range cases {
		if got := NormalizeHeading(c.in); got != c.want {
			t.Errorf("NormalizeHeading(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSectionMarkerAcrossSpans(t *testing.T) {
	raw := `<html><body><div><span>Item</span> <span>8.01</span> <b>Other Events</b></div></body></html>`
	doc := NewFilingDocument("u", "text/html", raw)

	if !doc.HasSectionMarker(SectionOtherEvents) {
		t.Error("section marker not found across styled spans")
	}
}

func TestSectionMarkerWithInterveningWords(t *testing.T) {
	doc := NewFilingDocument("u", "text/plain", "ITEM 8.01. Other Events and Regulation FD Disclosure")
	if !doc.HasSectionMarker(SectionOtherEvents) {
		t.Error("marker with intervening punctuation not matched")
	}

	doc = NewFilingDocument("u", "text/plain", "Item 7.01 Regulation FD Disclosure")
	if doc.HasSectionMarker(SectionOtherEvents) {
		t.Error("7.01 filing matched the 8.01 marker")
	}
}

func TestIsHTMLSniffsPayload(t *testing.T) {
	// SEC serves some HTML filings as text/plain.
	doc := NewFilingDocument("u", "text/plain", "<!DOCTYPE html><html><body>x</body></html>")
	if !doc.IsHTML() {
		t.Error("HTML payload with text/plain content type not recognized")
	}

	doc = NewFilingDocument("u", "text/plain", "Plain filing text.")
	if doc.IsHTML() {
		t.Error("plain text misidentified as HTML")
	}
	if doc.Tree() != nil {
		t.Error("plain text payload must have no HTML tree")
	}
	if doc.Text() != "Plain filing text." {
		t.Errorf("plain text mangled: %q", doc.Text())
	}
}

// Words in adjacent blocks must stay separated in the canonical text.
func TestTextSeparatesAdjacentNodes(t *testing.T) {
	raw := `<html><body><p>Aggregate ETH holdings</p><p>were 150,000 as of July 13, 2025.</p></body></html>`
	doc := NewFilingDocument("u", "text/html", raw)

	want := "Aggregate ETH holdings were 150,000 as of July 13, 2025."
	if got := doc.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTextSeparatesInlineSpans(t *testing.T) {
	raw := `<html><body><div><span>Item</span><span>8.01</span><b>Other Events</b></div></body></html>`
	doc := NewFilingDocument("u", "text/html", raw)

	if got := doc.Text(); got != "Item 8.01 Other Events" {
		t.Errorf("Text() = %q, want spans joined with spaces", got)
	}
}

func TestTextStripsScriptAndStyle(t *testing.T) {
	raw := `<html><head><style>p { color: red }</style></head>
		<body><script>var x = 99999;</script><p>ETH holdings were 65,432.</p></body></html>`
	doc := NewFilingDocument("u", "text/html", raw)

	text := doc.Text()
	if strings.Contains(text, "99999") || strings.Contains(text, "color") {
		t.Errorf("script/style content leaked into text: %q", text)
	}
	if !strings.Contains(text, "ETH holdings were 65,432.") {
		t.Errorf("visible text missing: %q", text)
	}
}
