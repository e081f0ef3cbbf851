package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
)

// headerRows is how many leading table rows are joined into composite column
// headers. Treasury-update tables split their headers across two or three
// rows of styled cells.
const headerRows = 3

var cellNumber = regexp.MustCompile(`[\d,]+`)

// TableStrategy extracts facts from tables under the Item 8.01 heading.
// It anchors on the heading node, walks forward siblings collecting tables
// until the next Item section begins, and matches composite column headers
// (first three rows joined per column, stripped to lowercase alphanumerics)
// against known fragments such as "aggregateethholdings" and "sharessold".
type TableStrategy struct{}

func (s *TableStrategy) Name() string { return "table" }

func (s *TableStrategy) Extract(doc *edgar.FilingDocument, target Target, kind FactKind) Result {
	tree := doc.Tree()
	if tree == nil {
		return NotFound
	}

	anchor := findSectionAnchor(tree)
	if anchor == nil {
		return NotFound
	}

	fragment := "sharessold"
	basis := Delta // a "shares sold" column reports this filing's ATM sales
	// Shares-sold columns carry per-filing deltas well below any plausible
	// outstanding total, so the data filter only has to exclude years and
	// footnote numbers.
	bounds := config.Bounds{Min: 9_999, Max: 1 << 40}
	if kind == CryptoHoldings {
		fragment = "aggregate" + strings.ToLower(target.CryptoSymbol) + "holdings"
		basis = Absolute
		bounds = target.HoldingsBounds
	}

	for _, table := range tablesAfterAnchor(anchor) {
		col, ok := matchColumn(table, fragment)
		if !ok {
			continue
		}
		if v, ok := firstDataCell(table, col, bounds); ok {
			return Result{Found: true, Value: v, Basis: basis}
		}
	}
	return NotFound
}

// findSectionAnchor locates the block element carrying the Item 8.01 heading.
// Heading text often arrives split across styled spans, so the joined,
// whitespace-collapsed text of each block is checked.
func findSectionAnchor(tree *goquery.Document) *goquery.Selection {
	var anchor *goquery.Selection
	tree.Find("p, div, span").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.ToLower(edgar.CollapseWhitespace(sel.Text()))
		if edgar.SectionOtherEvents.MatchString(text) && sel.Find("table").Length() == 0 {
			anchor = sel
			return false
		}
		return true
	})
	return anchor
}

// tablesAfterAnchor walks forward siblings of the anchor, collecting tables
// (direct or nested) until the next Item section heading.
func tablesAfterAnchor(anchor *goquery.Selection) []*goquery.Selection {
	var tables []*goquery.Selection
	node := anchor.Next()
	for node.Length() > 0 {
		text := strings.ToLower(edgar.CollapseWhitespace(node.Text()))
		if strings.HasPrefix(text, "item ") && !strings.Contains(text, "other events") {
			break
		}
		if goquery.NodeName(node) == "table" {
			tables = append(tables, node)
		} else {
			node.Find("table").Each(func(i int, t *goquery.Selection) {
				tables = append(tables, t)
			})
		}
		node = node.Next()
	}
	return tables
}

// matchColumn builds composite headers for a table and returns the index of
// the column whose normalized header contains the fragment.
func matchColumn(table *goquery.Selection, fragment string) (int, bool) {
	rows := table.Find("tr")
	limit := headerRows
	if rows.Length() < limit {
		limit = rows.Length()
	}

	var matrix [][]string
	for i := 0; i < limit; i++ {
		var cells []string
		rows.Eq(i).Find("td, th").Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, edgar.CollapseWhitespace(c.Text()))
		})
		matrix = append(matrix, cells)
	}

	maxCols := 0
	for _, row := range matrix {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range matrix {
			if col < len(row) {
				parts = append(parts, row[col])
			}
		}
		if strings.Contains(edgar.NormalizeHeading(strings.Join(parts, " ")), fragment) {
			return col, true
		}
	}
	return 0, false
}

// firstDataCell scans rows below the first header row for the first cell in
// the matched column holding a parseable, in-bounds integer. Trailing header
// rows hold label text, so the bounds filter is what separates data from the
// occasional year or footnote number.
func firstDataCell(table *goquery.Selection, col int, bounds config.Bounds) (int64, bool) {
	rows := table.Find("tr")
	for i := 1; i < rows.Length(); i++ {
		var cells []string
		rows.Eq(i).Find("td, th").Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, edgar.CollapseWhitespace(c.Text()))
		})
		if col >= len(cells) || strings.TrimSpace(cells[col]) == "" {
			continue
		}
		if v, ok := parseCommaInt(cells[col]); ok && bounds.Contains(v) {
			return v, true
		}
	}
	return 0, false
}

// parseCommaInt pulls the first comma-grouped number out of a cell and
// strips the commas.
func parseCommaInt(s string) (int64, bool) {
	m := cellNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
