package report

import (
	"strings"
	"testing"
	"time"

	"treasury_mnav/pkg/core/treasury"
	"treasury_mnav/pkg/core/utils"
)

func sampleAnalysis() *treasury.Analysis {
	return &treasury.Analysis{
		Ticker:         "SBET",
		CryptoType:     "ETH",
		CryptoPrice:    3000.0,
		StockPrice:     20.0,
		CryptoHoldings: 50_000,
		DilutedShares:  102_000_000,
		Metrics: treasury.ComputeMetrics(
			50_000, 3000.0, 102_000_000, 20.0),
		Outcome:          "updated",
		LastUpdated:      time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC),
		FilingsProcessed: 3,
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleAnalysis())

	for _, want := range []string{
		"# SBET MNAV Report",
		"ETH Price: $3000.00",
		"Aggregate ETH Holdings: 50000 ETH",
		"Diluted Shares Outstanding: 102000000",
		"Treasury Value: $150000000.00",
		"Filings Processed: 3",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}
	if !utils.ValidateMarkdown(md) {
		t.Error("report failed markdown validation")
	}
}

func TestReportRendersToHTML(t *testing.T) {
	html, err := utils.RenderMarkdownHTML(BuildMarkdown(sampleAnalysis()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "SBET MNAV Report") {
		t.Errorf("heading not rendered: %s", html)
	}
}

func TestNewMailerFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.test")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "reports")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("SENDER_EMAIL", "reports@example.test")

	m, err := NewMailerFromEnv()
	if err != nil {
		t.Fatalf("NewMailerFromEnv: %v", err)
	}
	if m.Host != "smtp.example.test" || m.Port != 2525 || m.From != "reports@example.test" {
		t.Errorf("mailer = %+v", m)
	}
}

func TestNewMailerFromEnvMissingHost(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SENDER_EMAIL", "reports@example.test")

	if _, err := NewMailerFromEnv(); err == nil {
		t.Error("missing SMTP_HOST must error")
	}
}
