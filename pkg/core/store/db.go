// Package store persists per-ticker treasury state and the append-only log
// of processed filings in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the database connection pool using the DATABASE_URL
// environment variable and bootstraps the schema.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		err = ensureSchema(ctx, pool)
	})
	return err
}

// GetPool returns the database connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// ensureSchema creates the two relations if absent. The UNIQUE constraint on
// (ticker, accession_number) is the concurrency-control primitive the
// reconciliation engine relies on.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS company_treasury (
			ticker VARCHAR(10) PRIMARY KEY,
			total_diluted_shares BIGINT NOT NULL,
			base_shares BIGINT NOT NULL,
			total_crypto_holdings BIGINT NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS filings_processed (
			id SERIAL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			accession_number VARCHAR(50) NOT NULL,
			filing_date DATE NOT NULL,
			filing_url TEXT NOT NULL,
			shares_added BIGINT NOT NULL DEFAULT 0,
			crypto_holdings BIGINT NOT NULL DEFAULT 0,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(ticker, accession_number)
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}
