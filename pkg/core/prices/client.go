// Package prices fetches live crypto and equity spot prices. Calls are
// sequential and blocking with fixed timeouts; a failed call surfaces
// immediately, retry is the caller's decision.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	coinGeckoPriceURL = "https://api.coingecko.com/api/v3/simple/price"
	yahooQuoteURL     = "https://query1.finance.yahoo.com/v7/finance/quote"
)

// Source provides USD spot prices for crypto assets and equities.
type Source interface {
	CryptoPriceUSD(ctx context.Context, coinGeckoID string) (float64, error)
	StockPriceUSD(ctx context.Context, ticker string) (float64, error)
}

// Client fetches prices from CoinGecko and Yahoo Finance.
type Client struct {
	httpClient *http.Client

	cryptoURL string
	quoteURL  string
}

var _ Source = (*Client)(nil)

// NewClient creates a price client with the production endpoints.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cryptoURL:  coinGeckoPriceURL,
		quoteURL:   yahooQuoteURL,
	}
}

// NewClientWithEndpoints creates a client pointed at alternate endpoints.
func NewClientWithEndpoints(httpClient *http.Client, cryptoURL, quoteURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, cryptoURL: cryptoURL, quoteURL: quoteURL}
}

// CryptoPriceUSD fetches the current USD price for a CoinGecko asset ID
// (e.g. "ethereum").
func (c *Client) CryptoPriceUSD(ctx context.Context, coinGeckoID string) (float64, error) {
	u := fmt.Sprintf("%s?ids=%s&vs_currencies=usd", c.cryptoURL, url.QueryEscape(coinGeckoID))
	body, err := c.get(ctx, u)
	if err != nil {
		return 0, fmt.Errorf("coingecko request failed: %w", err)
	}

	var resp map[string]map[string]float64
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse coingecko response: %w", err)
	}
	price, ok := resp[coinGeckoID]["usd"]
	if !ok {
		return 0, fmt.Errorf("no USD price for %s in coingecko response", coinGeckoID)
	}
	return price, nil
}

// StockPriceUSD fetches the current regular-market price for a ticker from
// the Yahoo Finance quote endpoint.
func (c *Client) StockPriceUSD(ctx context.Context, ticker string) (float64, error) {
	u := fmt.Sprintf("%s?symbols=%s", c.quoteURL, url.QueryEscape(ticker))
	body, err := c.get(ctx, u)
	if err != nil {
		return 0, fmt.Errorf("yahoo quote request failed: %w", err)
	}

	var resp struct {
		QuoteResponse struct {
			Result []struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse yahoo response: %w", err)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("no quote data for ticker %s", ticker)
	}
	price := resp.QuoteResponse.Result[0].RegularMarketPrice
	if price == nil {
		return 0, fmt.Errorf("price missing in yahoo response for %s", ticker)
	}
	return *price, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
