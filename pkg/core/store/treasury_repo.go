package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treasury_mnav/pkg/core/treasury"
)

// TreasuryRepo implements treasury.Store on PostgreSQL.
type TreasuryRepo struct {
	pool *pgxpool.Pool
}

var _ treasury.Store = (*TreasuryRepo)(nil)

// NewTreasuryRepo creates a repository on the package pool.
func NewTreasuryRepo() *TreasuryRepo {
	return &TreasuryRepo{pool: GetPool()}
}

// NewTreasuryRepoWithPool creates a repository on an explicit pool.
func NewTreasuryRepoWithPool(pool *pgxpool.Pool) *TreasuryRepo {
	return &TreasuryRepo{pool: pool}
}

// GetCompany loads the running totals for a ticker.
func (r *TreasuryRepo) GetCompany(ctx context.Context, ticker string) (*treasury.CompanyState, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var st treasury.CompanyState
	err := r.pool.QueryRow(ctx,
		`SELECT ticker, total_diluted_shares, base_shares, total_crypto_holdings, last_updated
		 FROM company_treasury WHERE ticker = $1`, ticker,
	).Scan(&st.Ticker, &st.TotalDilutedShares, &st.BaseShares, &st.TotalCryptoHoldings, &st.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", treasury.ErrNotInitialized, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company state: %w", err)
	}
	return &st, nil
}

// InitCompany creates or resets the company row. Both the running total and
// the audit baseline start at baseShares.
func (r *TreasuryRepo) InitCompany(ctx context.Context, ticker string, baseShares, initialHoldings int64) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO company_treasury (ticker, total_diluted_shares, base_shares, total_crypto_holdings, last_updated)
		 VALUES ($1, $2, $2, $3, CURRENT_TIMESTAMP)
		 ON CONFLICT (ticker)
		 DO UPDATE SET
			total_diluted_shares = EXCLUDED.total_diluted_shares,
			base_shares = EXCLUDED.base_shares,
			total_crypto_holdings = EXCLUDED.total_crypto_holdings,
			last_updated = CURRENT_TIMESTAMP`,
		ticker, baseShares, initialHoldings)
	if err != nil {
		return fmt.Errorf("failed to initialize %s: %w", ticker, err)
	}
	return nil
}

// LastProcessedFiling returns the most recently filed processed record for a
// ticker, or nil when none exist.
func (r *TreasuryRepo) LastProcessedFiling(ctx context.Context, ticker string) (*treasury.ProcessedFiling, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var f treasury.ProcessedFiling
	var filingDate time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT ticker, accession_number, filing_date, filing_url, shares_added, crypto_holdings, processed_at
		 FROM filings_processed WHERE ticker = $1
		 ORDER BY filing_date DESC, processed_at DESC LIMIT 1`, ticker,
	).Scan(&f.Ticker, &f.AccessionNumber, &filingDate, &f.FilingURL, &f.SharesAdded, &f.CryptoHoldings, &f.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last filing: %w", err)
	}
	f.FilingDate = filingDate.Format("2006-01-02")
	return &f, nil
}

// ApplyFilingUpdate appends the filing record and folds the merge into the
// company totals inside one transaction. The company row is locked first so
// racing reconciles for the same ticker serialize; the duplicate-insert
// detection then makes the loser a clean no-op.
func (r *TreasuryRepo) ApplyFilingUpdate(ctx context.Context, u treasury.FilingUpdate) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("database pool not initialized")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentShares, currentHoldings int64
	err = tx.QueryRow(ctx,
		`SELECT total_diluted_shares, total_crypto_holdings
		 FROM company_treasury WHERE ticker = $1 FOR UPDATE`, u.Record.Ticker,
	).Scan(&currentShares, &currentHoldings)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%w: %s", treasury.ErrNotInitialized, u.Record.Ticker)
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock company row: %w", err)
	}

	newShares := currentShares
	switch {
	case u.SetShares != nil:
		// Absolute figures never shrink the total.
		if *u.SetShares > newShares {
			newShares = *u.SetShares
		}
	case u.AddShares > 0:
		newShares += u.AddShares
	}
	sharesAdded := newShares - currentShares

	newHoldings := currentHoldings
	if u.SetHoldings != nil {
		newHoldings = *u.SetHoldings
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO filings_processed
			(ticker, accession_number, filing_date, filing_url, shares_added, crypto_holdings)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (ticker, accession_number) DO NOTHING`,
		u.Record.Ticker, u.Record.AccessionNumber, u.Record.FilingDate, u.Record.FilingURL,
		sharesAdded, u.Record.CryptoHoldings)
	if err != nil {
		return false, fmt.Errorf("failed to record filing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already processed by a concurrent run; leave totals untouched.
		return false, tx.Commit(ctx)
	}

	if newShares != currentShares || newHoldings != currentHoldings {
		_, err = tx.Exec(ctx,
			`UPDATE company_treasury
			 SET total_diluted_shares = $2, total_crypto_holdings = $3, last_updated = CURRENT_TIMESTAMP
			 WHERE ticker = $1`,
			u.Record.Ticker, newShares, newHoldings)
		if err != nil {
			return false, fmt.Errorf("failed to update company totals: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit filing update: %w", err)
	}
	return true, nil
}

// CountFilings returns how many filings have been processed for a ticker.
func (r *TreasuryRepo) CountFilings(ctx context.Context, ticker string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database pool not initialized")
	}

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM filings_processed WHERE ticker = $1`, ticker,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count filings: %w", err)
	}
	return count, nil
}
