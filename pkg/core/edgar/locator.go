// Package edgar locates and downloads SEC EDGAR filings.
//
// External libraries:
//   - github.com/PuerkitoBio/goquery: jQuery-style HTML traversal used to
//     derive the visible-text view of a filing document.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	userAgent         = "TreasuryMNAV/1.0 ops@treasurymnav.dev"
	submissionsAPIURL = "https://data.sec.gov/submissions/CIK%s.json"
	filingBaseURL     = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
)

// ErrNoFiling is returned when no qualifying 8-K exists in the recent index.
var ErrNoFiling = fmt.Errorf("no qualifying 8-K filing found")

// FilingRef identifies one located filing.
type FilingRef struct {
	AccessionNumber string // dashed form, e.g. "0001641172-25-020521"
	FilingDate      string // "2006-01-02" layout as reported by EDGAR
	PrimaryDocument string
	URL             string
}

// Locator resolves tickers to CIKs and finds recent 8-K filings. The
// ticker->CIK cache is loaded lazily and lives for the process lifetime; a
// newly listed ticker needs a restart to resolve.
type Locator struct {
	client *http.Client

	// Overridable endpoints for tests.
	submissionsURL string
	tickersURL     string
	docBaseURL     string

	tickerCache map[string]string
	tickerMutex sync.RWMutex
}

// NewLocator creates a locator with the SEC production endpoints.
func NewLocator() *Locator {
	return &Locator{
		client:         &http.Client{Timeout: 15 * time.Second},
		submissionsURL: submissionsAPIURL,
		tickersURL:     companyTickersURL,
		docBaseURL:     filingBaseURL,
	}
}

// NewLocatorWithEndpoints creates a locator pointed at alternate endpoints.
// The URL parameters follow the same fmt layouts as the SEC constants.
func NewLocatorWithEndpoints(client *http.Client, submissionsURL, tickersURL, docBaseURL string) *Locator {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Locator{
		client:         client,
		submissionsURL: submissionsURL,
		tickersURL:     tickersURL,
		docBaseURL:     docBaseURL,
	}
}

// submissionsResponse mirrors the SEC submissions JSON: filing attributes are
// parallel arrays, most recent first.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// LookupCIK resolves a ticker symbol to a zero-padded 10-digit CIK using
// SEC's company_tickers.json, consulting the process-wide cache first.
func (l *Locator) LookupCIK(ctx context.Context, ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))

	l.tickerMutex.RLock()
	cik, ok := l.tickerCache[normalized]
	l.tickerMutex.RUnlock()
	if ok {
		return cik, nil
	}

	l.tickerMutex.Lock()
	defer l.tickerMutex.Unlock()

	if l.tickerCache == nil {
		l.tickerCache = make(map[string]string)
	}
	// Another caller may have filled the cache while we waited for the lock.
	if cik, ok := l.tickerCache[normalized]; ok {
		return cik, nil
	}
	if len(l.tickerCache) == 0 {
		if err := l.loadTickerCache(ctx); err != nil {
			return "", err
		}
		if cik, ok := l.tickerCache[normalized]; ok {
			return cik, nil
		}
	}

	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

// loadTickerCache fetches the full ticker list from SEC.
// Format: {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple"}, ...}
func (l *Locator) loadTickerCache(ctx context.Context) error {
	fmt.Println("[Locator] Loading ticker->CIK map from SEC...")
	body, err := l.fetchURL(ctx, l.tickersURL)
	if err != nil {
		return fmt.Errorf("failed to fetch company tickers: %w", err)
	}

	type tickerEntry struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	var resp map[string]tickerEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse ticker JSON: %w", err)
	}

	for _, entry := range resp {
		l.tickerCache[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	fmt.Printf("[Locator] Loaded %d tickers from SEC.\n", len(l.tickerCache))
	return nil
}

// Latest8K scans the recent-filings index in its native most-recent-first
// order and returns the first 8-K. When requireOtherEvents is set, each
// candidate's primary document is downloaded and must contain the
// "Item 8.01 Other Events" section marker before it qualifies; the scan is
// bounded by the index size and fails fast on request errors.
func (l *Locator) Latest8K(ctx context.Context, cik string, requireOtherEvents bool) (*FilingRef, error) {
	cik = padCIK(cik)
	body, err := l.fetchURL(ctx, fmt.Sprintf(l.submissionsURL, cik))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submissions JSON: %w", err)
	}

	recent := resp.Filings.Recent
	for i, form := range recent.Form {
		if form != "8-K" {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			break
		}
		ref := &FilingRef{
			AccessionNumber: recent.AccessionNumber[i],
			PrimaryDocument: recent.PrimaryDocument[i],
			URL:             l.documentURL(cik, recent.AccessionNumber[i], recent.PrimaryDocument[i]),
		}
		if i < len(recent.FilingDate) {
			ref.FilingDate = recent.FilingDate[i]
		}

		if !requireOtherEvents {
			return ref, nil
		}

		doc, err := l.Download(ctx, ref.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to check candidate 8-K %s: %w", ref.AccessionNumber, err)
		}
		if doc.HasSectionMarker(SectionOtherEvents) {
			fmt.Printf("[Locator] Found 'Item 8.01 Other Events' in %s\n", ref.URL)
			return ref, nil
		}
	}

	return nil, ErrNoFiling
}

// documentURL builds the archive URL for a primary document. The accession
// number loses its dashes in the path segment.
func (l *Locator) documentURL(cik, accession, primaryDoc string) string {
	nodash := strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf(l.docBaseURL, strings.TrimLeft(cik, "0"), nodash, primaryDoc)
}

// Download fetches a filing's primary document and wraps it in a
// FilingDocument. PDF responses are rejected; the extraction path only
// handles HTML and plain text.
func (l *Locator) Download(ctx context.Context, url string) (*FilingDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filing download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("filing download returned status %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return nil, fmt.Errorf("unsupported filing format %q for %s", contentType, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read filing body: %w", err)
	}

	return NewFilingDocument(url, contentType, string(body)), nil
}

// fetchURL performs a GET with the SEC-required User-Agent header.
func (l *Locator) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SEC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func padCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

var accession18 = regexp.MustCompile(`\d{18}`)
var accessionDashed = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)

// NormalizeAccession converts an accession number to its canonical dashed
// form. Accepts the 18-digit archive-path form and passes dashed input
// through unchanged.
func NormalizeAccession(s string) (string, bool) {
	if m := accessionDashed.FindString(s); m != "" {
		return m, true
	}
	if m := accession18.FindString(s); m != "" {
		return m[:10] + "-" + m[10:12] + "-" + m[12:], true
	}
	return "", false
}
