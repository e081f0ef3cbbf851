package edgar

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// SectionOtherEvents is the 8-K section heading that treasury-update filings
// report under. Matching tolerates arbitrary whitespace and intervening words
// between the item number and the heading text.
var SectionOtherEvents = regexp.MustCompile(`item\s*8\.01.*other events`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FilingDocument is the request-scoped value owning one fetched filing
// payload. Two read-only views are derived from the same payload on demand:
// the parsed HTML tree (kept for table-aware extraction) and the canonical
// visible text (used for regex search). Neither view re-fetches or re-parses
// once built.
type FilingDocument struct {
	URL         string
	ContentType string
	Raw         string

	once sync.Once
	tree *goquery.Document
	text string
}

// NewFilingDocument wraps a fetched payload.
func NewFilingDocument(url, contentType, raw string) *FilingDocument {
	return &FilingDocument{URL: url, ContentType: contentType, Raw: raw}
}

// IsHTML reports whether the payload should be treated as markup. The SEC
// serves some HTML filings with a text/plain content type, so the sniff also
// looks at the payload itself.
func (d *FilingDocument) IsHTML() bool {
	ct := strings.ToLower(d.ContentType)
	if strings.Contains(ct, "html") || strings.Contains(ct, "xml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(d.Raw))
	return strings.HasPrefix(head, "<html") || strings.HasPrefix(head, "<?xml") || strings.HasPrefix(head, "<!doctype html")
}

func (d *FilingDocument) build() {
	d.once.Do(func() {
		if !d.IsHTML() {
			d.text = d.Raw
			return
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.Raw))
		if err != nil {
			d.text = d.Raw
			return
		}
		doc.Find("script, style").Remove()
		d.tree = doc
		d.text = visibleText(doc)
	})
}

// Tree returns the parsed HTML tree, or nil for plain-text payloads.
func (d *FilingDocument) Tree() *goquery.Document {
	d.build()
	return d.tree
}

// Text returns the canonical visible text: script/style stripped, text nodes
// joined with single spaces, whitespace runs collapsed. Plain text passes
// through unchanged apart from whitespace collapsing on the HTML path.
func (d *FilingDocument) Text() string {
	d.build()
	return d.text
}

// HasSectionMarker reports whether the normalized lowercase text matches the
// section heading pattern.
func (d *FilingDocument) HasSectionMarker(marker *regexp.Regexp) bool {
	return marker.MatchString(strings.ToLower(d.Text()))
}

// visibleText joins every text node with a single space so words straddling
// element boundaries stay separated. goquery's Text() concatenates adjacent
// nodes with no separator, which jams "holdings" against the next block's
// "were" and breaks phrase matching.
func visibleText(doc *goquery.Document) string {
	var parts []string
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			}
		})
	})
	return CollapseWhitespace(strings.Join(parts, " "))
}

// CollapseWhitespace joins all whitespace runs (including NBSP) into single
// spaces and trims the ends.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeHeading strips a string down to lowercase alphanumerics. Used to
// compare section headings and composite table headers that arrive split
// across styled spans.
func NormalizeHeading(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
