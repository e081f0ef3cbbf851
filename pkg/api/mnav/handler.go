// Package mnav provides the HTTP handlers for treasury MNAV analysis.
package mnav

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"treasury_mnav/pkg/core/treasury"
)

// Handler serves the initialize/analyze/status endpoints.
type Handler struct {
	service *treasury.Service
}

// NewHandler wraps the treasury service.
func NewHandler(service *treasury.Service) *Handler {
	return &Handler{service: service}
}

// InitializeRequest is the POST /api/initialize/{ticker} body.
type InitializeRequest struct {
	TotalDilutedSharesOutstanding int64 `json:"total_diluted_shares_outstanding"`
	InitialCryptoHoldings         int64 `json:"initial_crypto_holdings"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")
}

// tickerFromPath pulls the trailing path segment: /api/analyze/SBET -> SBET.
func tickerFromPath(path, prefix string) string {
	return strings.ToUpper(strings.Trim(strings.TrimPrefix(path, prefix), "/"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, treasury.ErrUnsupportedTicker):
		return http.StatusNotFound
	case errors.Is(err, treasury.ErrNotInitialized):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HandleInitialize handles POST /api/initialize/{ticker}.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ticker := tickerFromPath(r.URL.Path, "/api/initialize")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return
	}

	var req InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tc, err := h.service.Initialize(r.Context(), ticker, req.TotalDilutedSharesOutstanding, req.InitialCryptoHoldings)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":     fmt.Sprintf("Initialized %s with %d base diluted shares", tc.Ticker, req.TotalDilutedSharesOutstanding),
		"ticker":      tc.Ticker,
		"crypto_type": tc.CryptoSymbol,
		"base_shares": req.TotalDilutedSharesOutstanding,
	})
}

// HandleAnalyze handles GET /api/analyze/{ticker}.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ticker := tickerFromPath(r.URL.Path, "/api/analyze")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return
	}

	runID := uuid.New().String()[:8]
	fmt.Printf("[API] run %s: analyze %s\n", runID, ticker)

	analysis, err := h.service.Analyze(r.Context(), ticker)
	if err != nil {
		fmt.Printf("[API] run %s: analysis failed: %v\n", runID, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	json.NewEncoder(w).Encode(analysis)
}

// HandleStatus handles GET /api/status/{ticker}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ticker := tickerFromPath(r.URL.Path, "/api/status")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return
	}

	status, err := h.service.GetStatus(r.Context(), ticker)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	json.NewEncoder(w).Encode(status)
}

// HandleHealth handles GET /.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":           "MNAV analysis service is running",
		"supported_tickers": h.service.SupportedTickers(),
	})
}
