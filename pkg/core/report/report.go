// Package report formats MNAV analysis results as markdown and delivers
// them by email.
package report

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"treasury_mnav/pkg/core/treasury"
	"treasury_mnav/pkg/core/utils"
)

// BuildMarkdown renders the emailed MNAV report body.
func BuildMarkdown(a *treasury.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s MNAV Report\n\n", a.Ticker)
	fmt.Fprintf(&b, "Generated at: %s\n\n", a.LastUpdated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- %s Price: $%.2f\n", a.CryptoType, a.CryptoPrice)
	fmt.Fprintf(&b, "- %s Stock Price: $%.2f\n\n", a.Ticker, a.StockPrice)
	fmt.Fprintf(&b, "- Aggregate %s Holdings: %d %s\n", a.CryptoType, a.CryptoHoldings, a.CryptoType)
	fmt.Fprintf(&b, "- Diluted Shares Outstanding: %d\n\n", a.DilutedShares)
	fmt.Fprintf(&b, "- Treasury Value: $%.2f\n", a.Metrics.TreasuryValue)
	fmt.Fprintf(&b, "- MNAV per Share: $%.2f\n", a.Metrics.MNAVPerShare)
	fmt.Fprintf(&b, "- Market Cap: $%.2f\n", a.Metrics.MarketCap)
	fmt.Fprintf(&b, "- MNAV Multiple (MarketCap / Treasury): %.2fx\n\n", a.Metrics.MNAVMultiple)
	fmt.Fprintf(&b, "Filings Processed: %d\n\n", a.FilingsProcessed)
	b.WriteString("Generated automatically by the MNAV analysis service.\n")
	return b.String()
}

// Mailer sends HTML reports over SMTP.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailerFromEnv reads SMTP settings from the environment
// (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SENDER_EMAIL).
func NewMailerFromEnv() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST environment variable not set")
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}
	from := os.Getenv("SENDER_EMAIL")
	if from == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable not set")
	}
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     from,
	}, nil
}

// Send renders the analysis to HTML and mails it.
func (m *Mailer) Send(to string, a *treasury.Analysis) error {
	markdown := BuildMarkdown(a)
	if !utils.ValidateMarkdown(markdown) {
		return fmt.Errorf("report body failed markdown validation")
	}
	html, err := utils.RenderMarkdownHTML(markdown)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s MNAV Report", a.Ticker)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		html,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send report to %s: %w", to, err)
	}
	return nil
}
