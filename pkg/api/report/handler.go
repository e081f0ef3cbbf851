// Package report provides the HTTP handler for emailed MNAV reports.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	corereport "treasury_mnav/pkg/core/report"
	"treasury_mnav/pkg/core/treasury"
)

// Handler serves POST /api/email.
type Handler struct {
	service *treasury.Service
	mailer  *corereport.Mailer
}

// NewHandler wraps the service and mailer.
func NewHandler(service *treasury.Service, mailer *corereport.Mailer) *Handler {
	return &Handler{service: service, mailer: mailer}
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

// EmailRequest is the POST /api/email body.
type EmailRequest struct {
	Email  string `json:"email"`
	Ticker string `json:"ticker"`
}

// HandleEmail runs a fresh analysis for the ticker and mails the report.
func (h *Handler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.mailer == nil {
		http.Error(w, "email delivery not configured", http.StatusServiceUnavailable)
		return
	}

	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid email address", http.StatusBadRequest)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req.Ticker)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if err := h.mailer.Send(req.Email, analysis); err != nil {
		fmt.Printf("[Report] email delivery failed: %v\n", err)
		http.Error(w, fmt.Sprintf("failed to send email: %v", err), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"message": fmt.Sprintf("Email sent successfully to %s", req.Email),
	})
}
