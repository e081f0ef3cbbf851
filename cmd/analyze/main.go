// Command analyze runs a one-shot MNAV analysis for a single ticker and
// prints the metric block.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
	"treasury_mnav/pkg/core/extract"
	"treasury_mnav/pkg/core/llm"
	"treasury_mnav/pkg/core/prices"
	"treasury_mnav/pkg/core/store"
	"treasury_mnav/pkg/core/treasury"
)

func main() {
	var (
		ticker     = flag.String("ticker", "", "stock ticker symbol (e.g. SBET, MSTR)")
		initShares = flag.Int64("init-shares", 0, "initialize the ticker with this base diluted share count before analyzing")
		configPath = flag.String("config", "config/tickers.yaml", "ticker configuration file")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall request timeout")
	)
	flag.Parse()

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -ticker SBET [-init-shares N]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	registry := config.DefaultRegistry()
	if loaded, err := config.LoadRegistry(*configPath); err == nil {
		registry = loaded
	}

	if err := store.InitDB(ctx); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer store.Close()

	var ai treasury.AIFactExtractor
	if os.Getenv("GEMINI_API_KEY") != "" {
		ai = extract.NewAIExtractor(&llm.GeminiProvider{Model: os.Getenv("GEMINI_MODEL")})
	}

	repo := store.NewTreasuryRepo()
	engine := treasury.NewEngine(edgar.NewLocator(), extract.NewExtractor(), ai, repo)
	service := treasury.NewService(registry, engine, repo, prices.NewClient())

	if *initShares > 0 {
		if _, err := service.Initialize(ctx, *ticker, *initShares, 0); err != nil {
			log.Fatalf("Initialization failed: %v", err)
		}
		fmt.Printf("Initialized %s with %d base diluted shares\n", *ticker, *initShares)
	}

	analysis, err := service.Analyze(ctx, *ticker)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Println("\nMNAV METRICS:")
	fmt.Printf("  %s Holdings: %d %s\n", analysis.CryptoType, analysis.CryptoHoldings, analysis.CryptoType)
	fmt.Printf("  %s Price: $%.2f\n", analysis.CryptoType, analysis.CryptoPrice)
	fmt.Printf("  %s Stock Price: $%.2f\n", analysis.Ticker, analysis.StockPrice)
	fmt.Printf("  Diluted Shares: %d\n", analysis.DilutedShares)
	fmt.Printf("  Treasury Value: $%.2f\n", analysis.Metrics.TreasuryValue)
	fmt.Printf("  MNAV per Share: $%.2f\n", analysis.Metrics.MNAVPerShare)
	fmt.Printf("  Market Cap: $%.2f\n", analysis.Metrics.MarketCap)
	fmt.Printf("  MNAV Multiple: %.2fx\n", analysis.Metrics.MNAVMultiple)
	fmt.Printf("  Reconciliation: %s, %d filings processed\n", analysis.Outcome, analysis.FilingsProcessed)
}
