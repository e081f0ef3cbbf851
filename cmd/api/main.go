package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apimnav "treasury_mnav/pkg/api/mnav"
	apireport "treasury_mnav/pkg/api/report"
	"treasury_mnav/pkg/core/config"
	"treasury_mnav/pkg/core/edgar"
	"treasury_mnav/pkg/core/extract"
	"treasury_mnav/pkg/core/llm"
	"treasury_mnav/pkg/core/prices"
	"treasury_mnav/pkg/core/report"
	"treasury_mnav/pkg/core/store"
	"treasury_mnav/pkg/core/treasury"
)

func main() {
	godotenv.Load()
	ctx := context.Background()

	// Ticker registry: config file when present, built-in reference set
	// otherwise.
	registry := config.DefaultRegistry()
	configPath := os.Getenv("TICKER_CONFIG")
	if configPath == "" {
		configPath = "config/tickers.yaml"
	}
	if loaded, err := config.LoadRegistry(configPath); err == nil {
		registry = loaded
		fmt.Printf("[Main] Loaded ticker config from %s\n", configPath)
	} else {
		fmt.Printf("[Main] Using built-in ticker config (%v)\n", err)
	}

	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[FATAL] Database initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Model-assisted extraction is optional; the cascade covers everything
	// when no key is configured.
	var ai treasury.AIFactExtractor
	if os.Getenv("GEMINI_API_KEY") != "" {
		ai = extract.NewAIExtractor(&llm.GeminiProvider{Model: os.Getenv("GEMINI_MODEL")})
		fmt.Println("[Main] Model-assisted extraction enabled")
	}

	repo := store.NewTreasuryRepo()
	engine := treasury.NewEngine(edgar.NewLocator(), extract.NewExtractor(), ai, repo)
	service := treasury.NewService(registry, engine, repo, prices.NewClient())

	handler := apimnav.NewHandler(service)
	http.HandleFunc("/api/initialize/", handler.HandleInitialize)
	http.HandleFunc("/api/analyze/", handler.HandleAnalyze)
	http.HandleFunc("/api/status/", handler.HandleStatus)
	http.HandleFunc("/", handler.HandleHealth)

	mailer, err := report.NewMailerFromEnv()
	if err != nil {
		fmt.Printf("[Main] Email reports disabled: %v\n", err)
	}
	reportHandler := apireport.NewHandler(service, mailer)
	http.HandleFunc("/api/email", reportHandler.HandleEmail)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/initialize/{ticker}")
	fmt.Println("  - GET  /api/analyze/{ticker}")
	fmt.Println("  - GET  /api/status/{ticker}")
	fmt.Println("  - POST /api/email")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
