// Package main runs the autonomous trading bot:
// - Orchestrator (scheduled): general + watchlist poll cycles
// - Ops HTTP: /health, /metrics, /status
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"token-autotrader/internal/bot"
	"token-autotrader/internal/decision"
	"token-autotrader/internal/domain"
	"token-autotrader/internal/marketdata"
	"token-autotrader/internal/observability"
	"token-autotrader/internal/storage"
	chstore "token-autotrader/internal/storage/clickhouse"
	"token-autotrader/internal/storage/memory"
	"token-autotrader/internal/storage/migrations"
	pgstore "token-autotrader/internal/storage/postgres"
)

// botStores holds the storage implementations the bot runs on.
type botStores struct {
	positions  storage.PositionStore
	watchlists storage.WatchlistStore
	archive    storage.SnapshotArchive
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	marketURL := flag.String("marketdata-url", envOr("MARKETDATA_BASE_URL", marketdata.DefaultBaseURL), "Discovery API base URL")
	pollInterval := flag.Duration("poll-interval", envDurationOr("POLL_INTERVAL", 60*time.Second), "General cycle interval")
	watchlistInterval := flag.Duration("watchlist-interval", envDurationOr("WATCHLIST_POLL_INTERVAL", 30*time.Second), "Watchlist cycle interval")
	maxPositions := flag.Int("max-positions", envIntOr("MAX_POSITIONS", 5), "Maximum concurrent positions")
	maxInvestment := flag.String("max-investment", envOr("MAX_INVESTMENT", "1000"), "Total capital cap in quote units")
	profile := flag.String("profile", envOr("STRATEGY_PROFILE", string(domain.ProfileBalanced)), "Strategy profile (aggressive, balanced, conservative)")
	prioritizeWatchlisted := flag.Bool("prioritize-watchlisted", envBoolOr("PRIORITIZE_WATCHLISTED", true), "Run the dedicated watchlist cycle")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":9090"), "Ops HTTP address (health, metrics, status)")
	verbose := flag.Bool("verbose", false, "Verbose cycle logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	investCap, err := decimal.NewFromString(*maxInvestment)
	if err != nil {
		logger.Fatalf("Invalid --max-investment %q: %v", *maxInvestment, err)
	}

	cfg := domain.BotConfig{
		PollInterval:          *pollInterval,
		WatchlistPollInterval: *watchlistInterval,
		MaxPositions:          *maxPositions,
		MaxInvestment:         investCap,
		StrategyProfile:       domain.StrategyProfile(*profile),
		PrioritizeWatchlisted: *prioritizeWatchlisted,
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create components
	market := marketdata.NewClient(
		marketdata.WithBaseURL(*marketURL),
		marketdata.WithLogger(log.New(os.Stdout, "[marketdata] ", log.LstdFlags)),
	)

	orch, err := bot.New(bot.Options{
		Market:     market,
		Positions:  stores.positions,
		Watchlists: stores.watchlists,
		Engine:     decision.NewStaticEngine(),
		Archive:    stores.archive,
		Config:     &cfg,
		Logger:     log.New(os.Stdout, "[bot] ", log.LstdFlags),
		Verbose:    *verbose,
	})
	if err != nil {
		logger.Fatalf("Failed to create orchestrator: %v", err)
	}

	// Start HTTP server
	go startHTTPServer(*httpAddr, orch, logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	orch.Start()
	logger.Printf("Bot running (profile: %s, max positions: %d, cap: %s)",
		cfg.StrategyProfile, cfg.MaxPositions, cfg.MaxInvestment)

	sig := <-sigCh
	logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

	// Wait for second signal for immediate shutdown
	go func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	orch.Stop()
	cancel()
	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*botStores, func(), error) {
	if useMemory {
		stores := &botStores{
			positions:  memory.NewPositionStore(),
			watchlists: memory.NewWatchlistStore(),
			archive:    memory.NewSnapshotArchive(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &botStores{
		positions:  pgstore.NewPositionStore(pool),
		watchlists: pgstore.NewWatchlistStore(pool),
		archive:    chstore.NewSnapshotArchive(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func startHTTPServer(addr string, orch *bot.Orchestrator, logger *log.Logger) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orch.GetStatus()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
