package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCryptoPriceUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "ethereum" {
			t.Errorf("ids = %q, want ethereum", got)
		}
		fmt.Fprint(w, `{"ethereum": {"usd": 3142.57}}`)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints(srv.Client(), srv.URL, "")
	price, err := c.CryptoPriceUSD(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("CryptoPriceUSD: %v", err)
	}
	if price != 3142.57 {
		t.Errorf("price = %f, want 3142.57", price)
	}
}

func TestCryptoPriceMissingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints(srv.Client(), srv.URL, "")
	if _, err := c.CryptoPriceUSD(context.Background(), "ethereum"); err == nil {
		t.Error("missing asset must error, not default to zero")
	}
}

func TestStockPriceUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "SBET" {
			t.Errorf("symbols = %q, want SBET", got)
		}
		fmt.Fprint(w, `{"quoteResponse": {"result": [{"regularMarketPrice": 21.84}]}}`)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints(srv.Client(), "", srv.URL)
	price, err := c.StockPriceUSD(context.Background(), "SBET")
	if err != nil {
		t.Fatalf("StockPriceUSD: %v", err)
	}
	if price != 21.84 {
		t.Errorf("price = %f, want 21.84", price)
	}
}

func TestStockPriceMissingField(t *testing.T) {
	cases := []string{
		`{"quoteResponse": {"result": []}}`,
		`{"quoteResponse": {"result": [{}]}}`,
	}
	for _, body := range cases {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		c := NewClientWithEndpoints(srv.Client(), "", srv.URL)
		if _, err := c.StockPriceUSD(context.Background(), "SBET"); err == nil {
			t.Errorf("response %q must error", body)
		}
		srv.Close()
	}
}

func TestPriceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints(srv.Client(), srv.URL, srv.URL)
	if _, err := c.CryptoPriceUSD(context.Background(), "ethereum"); err == nil {
		t.Error("non-200 crypto response must error")
	}
	if _, err := c.StockPriceUSD(context.Background(), "SBET"); err == nil {
		t.Error("non-200 quote response must error")
	}
}
