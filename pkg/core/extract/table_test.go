package extract

import (
	"testing"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
)

var ethTarget = Target{
	CryptoSymbol:   "ETH",
	CryptoName:     "Ethereum",
	HoldingsBounds: config.DefaultHoldingsBounds,
	SharesBounds:   config.DefaultSharesBounds,
}

func htmlDoc(body string) *edgar.FilingDocument {
	return edgar.NewFilingDocument("https://example.test/doc.htm", "text/html",
		"<html><body>"+body+"</body></html>")
}

func TestTableStrategyHoldingsColumn(t *testing.T) {
	doc := htmlDoc(`
		<p>Item 8.01 Other Events.</p>
		<table>
			<tr><td>Week Ending</td><td>Aggregate ETH Holdings</td></tr>
			<tr><td>July 13, 2025</td><td>65,432</td></tr>
		</table>`)

	res := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings)
	if !res.Found || res.Value != 65_432 {
		t.Fatalf("holdings = %+v, want 65432", res)
	}
	if res.Basis != Absolute {
		t.Errorf("basis = %s, want absolute", res.Basis)
	}
}

// Headers split across styled rows must still match as one composite label.
func TestTableStrategyCompositeHeader(t *testing.T) {
	doc := htmlDoc(`
		<div><span>Item 8.01</span> <span>Other Events</span></div>
		<div>
		<table>
			<tr><td></td><td>Aggregate ETH</td><td>Shares</td></tr>
			<tr><td>Date</td><td>Holdings</td><td>Sold</td></tr>
			<tr><td>July 13, 2025</td><td>198,167</td><td>2,000,000</td></tr>
		</table>
		</div>`)

	holdings := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings)
	if !holdings.Found || holdings.Value != 198_167 || holdings.Basis != Absolute {
		t.Errorf("holdings = %+v, want 198167 absolute", holdings)
	}

	shares := (&TableStrategy{}).Extract(doc, ethTarget, SharesSold)
	if !shares.Found || shares.Value != 2_000_000 {
		t.Errorf("shares = %+v, want 2000000", shares)
	}
	if shares.Basis != Delta {
		t.Errorf("shares basis = %s, want delta (per-filing sale, not a total)", shares.Basis)
	}
}

// Year cells in a date column must not leak into the matched column's data.
func TestTableStrategySkipsImplausibleCells(t *testing.T) {
	doc := htmlDoc(`
		<p>Item 8.01 Other Events.</p>
		<table>
			<tr><td>Fiscal Year</td><td>Aggregate ETH Holdings</td></tr>
			<tr><td>2025</td><td>(1)</td></tr>
			<tr><td>2024</td><td>150,000</td></tr>
		</table>`)

	res := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings)
	if !res.Found || res.Value != 150_000 {
		t.Errorf("holdings = %+v, want 150000 (footnote marker skipped)", res)
	}
}

func TestTableStrategyIgnoresTablesOutsideSection(t *testing.T) {
	doc := htmlDoc(`
		<p>Item 7.01 Regulation FD Disclosure.</p>
		<table>
			<tr><td>Aggregate ETH Holdings</td></tr>
			<tr><td>65,432</td></tr>
		</table>`)

	if res := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings); res.Found {
		t.Errorf("table outside Item 8.01 matched: %+v", res)
	}
}

func TestTableStrategyStopsAtNextSection(t *testing.T) {
	doc := htmlDoc(`
		<p>Item 8.01 Other Events.</p>
		<p>No tabular disclosure this week.</p>
		<p>Item 9.01 Financial Statements and Exhibits.</p>
		<table>
			<tr><td>Aggregate ETH Holdings</td></tr>
			<tr><td>65,432</td></tr>
		</table>`)

	if res := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings); res.Found {
		t.Errorf("table after next Item heading matched: %+v", res)
	}
}

func TestTableStrategyPlainTextMiss(t *testing.T) {
	doc := edgar.NewFilingDocument("u", "text/plain", "Item 8.01 Other Events. ETH holdings were 65,432.")
	if res := (&TableStrategy{}).Extract(doc, ethTarget, CryptoHoldings); res.Found {
		t.Errorf("plain text should never match the table strategy: %+v", res)
	}
}
