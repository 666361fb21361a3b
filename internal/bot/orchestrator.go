// Package bot runs the trading orchestrator.
// It coordinates: discovery → analysis → position management → status
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"token-autotrader/internal/decision"
	"token-autotrader/internal/domain"
	"token-autotrader/internal/idhash"
	"token-autotrader/internal/marketdata"
	"token-autotrader/internal/observability"
	"token-autotrader/internal/storage"
)

// Trading thresholds.
const (
	confidenceThreshold  = 0.7
	watchlistBoost       = 1.2
	minTrendingVolume    = 10_000  // 24h volume floor for general-cycle candidates
	minTrendingMarketCap = 100_000 // market cap floor for general-cycle candidates

	boostAnnotation = " [watchlist priority boost applied]"
	quoteSymbol     = "USDC"

	cycleGeneral   = "general"
	cycleWatchlist = "watchlist"
)

// MarketData is the slice of the discovery client the orchestrator uses.
type MarketData interface {
	Trending(ctx context.Context, filters marketdata.Filters) ([]*domain.TokenSnapshot, error)
	BySymbol(ctx context.Context, symbol string) (*domain.TokenSnapshot, error)
}

var _ MarketData = (*marketdata.Client)(nil)

// Orchestrator drives the two poll cycles: the general cycle scans
// trending pairs, the watchlist cycle gives watchlisted tokens an extra,
// faster pass. All state transitions go through the stores; the
// orchestrator itself only holds config and status.
type Orchestrator struct {
	market     MarketData
	positions  storage.PositionStore
	watchlists storage.WatchlistStore
	engine     decision.Engine
	archive    storage.SnapshotArchive // optional
	logger     *log.Logger
	verbose    bool

	// State
	mu               sync.Mutex
	config           domain.BotConfig
	status           domain.BotStatus
	running          bool
	cancel           context.CancelFunc
	generalRunning   bool
	watchlistRunning bool

	wg sync.WaitGroup
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Market     MarketData
	Positions  storage.PositionStore
	Watchlists storage.WatchlistStore
	Engine     decision.Engine

	// Optional
	Archive storage.SnapshotArchive // nil disables snapshot archiving
	Config  *domain.BotConfig       // nil uses DefaultConfig
	Logger  *log.Logger
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Market == nil {
		return nil, errors.New("market data client is required")
	}
	if opts.Positions == nil {
		return nil, errors.New("position store is required")
	}
	if opts.Watchlists == nil {
		return nil, errors.New("watchlist store is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("decision engine is required")
	}

	cfg := domain.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[bot] ", log.LstdFlags)
	}

	return &Orchestrator{
		market:     opts.Market,
		positions:  opts.Positions,
		watchlists: opts.Watchlists,
		engine:     opts.Engine,
		archive:    opts.Archive,
		config:     cfg,
		logger:     logger,
		verbose:    opts.Verbose,
	}, nil
}

// Start launches both poll cycles. Calling Start on a running bot is a
// logged no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		o.logger.Println("already running, ignoring start")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.running = true
	o.status.Running = true
	o.mu.Unlock()

	o.logger.Printf("starting (poll: %v, watchlist poll: %v)",
		o.GetConfig().PollInterval, o.GetConfig().WatchlistPollInterval)

	o.wg.Add(2)
	go o.runScheduler(ctx, cycleGeneral,
		func(c domain.BotConfig) time.Duration { return c.PollInterval },
		o.runGeneralCycle)
	go o.runScheduler(ctx, cycleWatchlist,
		func(c domain.BotConfig) time.Duration { return c.WatchlistPollInterval },
		o.runWatchlistCycle)
}

// Stop cancels both cycles and waits for any in-flight cycle to finish.
// Calling Stop on a stopped bot is a logged no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		o.logger.Println("not running, ignoring stop")
		return
	}
	o.running = false
	o.status.Running = false
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	o.wg.Wait()
	o.logger.Println("stopped")
}

// GetStatus returns a copy of the current bot status.
func (o *Orchestrator) GetStatus() domain.BotStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// GetConfig returns a copy of the current configuration.
func (o *Orchestrator) GetConfig() domain.BotConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// UpdateConfig merges the partial update into the live configuration.
// The merged config takes effect on the next cycle; the running cycle
// keeps the values it started with.
func (o *Orchestrator) UpdateConfig(u domain.ConfigUpdate) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	merged := o.config.Apply(u)
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("invalid config update: %w", err)
	}
	o.config = merged
	return nil
}

// runScheduler drives one cycle on its ticker. The first run fires
// immediately; interval changes via UpdateConfig are picked up after the
// following tick.
func (o *Orchestrator) runScheduler(ctx context.Context, cycle string, interval func(domain.BotConfig) time.Duration, run func(context.Context)) {
	defer o.wg.Done()

	run(ctx)

	current := interval(o.GetConfig())
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
			if next := interval(o.GetConfig()); next != current {
				current = next
				ticker.Reset(next)
			}
		}
	}
}

// runGeneralCycle executes one general poll, skipping the tick when the
// previous general cycle is still in flight.
func (o *Orchestrator) runGeneralCycle(ctx context.Context) {
	o.runCycle(ctx, cycleGeneral, &o.generalRunning, o.generalCycle)
}

// runWatchlistCycle executes one watchlist poll under the same skip rule.
func (o *Orchestrator) runWatchlistCycle(ctx context.Context) {
	o.runCycle(ctx, cycleWatchlist, &o.watchlistRunning, o.watchlistCycle)
}

func (o *Orchestrator) runCycle(ctx context.Context, cycle string, inFlight *bool, fn func(context.Context) error) {
	o.mu.Lock()
	if *inFlight {
		o.mu.Unlock()
		observability.RecordTickSkipped(cycle)
		o.logger.Printf("%s cycle already running, skipping tick", cycle)
		return
	}
	*inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		*inFlight = false
		o.mu.Unlock()
	}()

	start := time.Now()
	err := fn(ctx)
	switch {
	case err == nil:
		observability.RecordCycle(cycle, "ok", time.Since(start).Seconds())
	case errors.Is(err, context.Canceled):
		// Shutdown mid-cycle, not a failure
	default:
		observability.RecordCycle(cycle, "error", time.Since(start).Seconds())
		o.logger.Printf("%s cycle failed: %v", cycle, err)
		o.mu.Lock()
		o.status.LastError = err.Error()
		o.mu.Unlock()
	}
}

// generalCycle scans trending pairs, opens positions for accepted
// candidates, refreshes active position prices and updates status.
func (o *Orchestrator) generalCycle(ctx context.Context) error {
	cfg := o.GetConfig()

	snaps, err := o.market.Trending(ctx, marketdata.Filters{
		MinVolume24h: minTrendingVolume,
		MinMarketCap: minTrendingMarketCap,
	})
	if err != nil {
		return fmt.Errorf("trending fetch: %w", err)
	}
	o.logv("general cycle: %d trending candidates", len(snaps))

	o.archiveSnapshots(ctx, snaps)

	active, err := o.positions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active positions: %w", err)
	}
	held := heldSymbols(active)
	openCount := len(active)

	for _, snap := range snaps {
		if openCount >= cfg.MaxPositions {
			o.logv("general cycle: position limit %d reached", cfg.MaxPositions)
			break
		}
		if held[snap.Symbol] {
			continue
		}
		if o.analyze(ctx, snap, false, cfg) {
			held[snap.Symbol] = true
			openCount++
		}
	}

	o.refreshPositions(ctx)
	return o.updateStatus(ctx)
}

// watchlistCycle gives watchlisted tokens a dedicated, faster pass. It is
// a no-op while PrioritizeWatchlisted is off.
func (o *Orchestrator) watchlistCycle(ctx context.Context) error {
	cfg := o.GetConfig()
	if !cfg.PrioritizeWatchlisted {
		return nil
	}

	tokens, err := o.watchlists.ListAllTokens(ctx)
	if err != nil {
		return fmt.Errorf("list watchlist tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	active, err := o.positions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active positions: %w", err)
	}
	held := heldSymbols(active)
	openCount := len(active)

	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok.Symbol] {
			continue
		}
		seen[tok.Symbol] = true

		if held[tok.Symbol] {
			continue
		}
		if openCount >= cfg.MaxPositions {
			break
		}

		snap, err := o.market.BySymbol(ctx, tok.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Single-symbol lookups are soft: one unavailable token must
			// not abort the remaining watchlist candidates.
			o.logv("watchlist fetch %s failed: %v", tok.Symbol, err)
			continue
		}

		if o.analyze(ctx, snap, true, cfg) {
			held[snap.Symbol] = true
			openCount++
		}
	}

	return nil
}

// analyze runs one candidate through the decision engine and opens a
// position when the (possibly boosted) confidence clears the threshold.
// Returns true when a position was opened. Errors never abort the cycle.
func (o *Orchestrator) analyze(ctx context.Context, snap *domain.TokenSnapshot, watchlisted bool, cfg domain.BotConfig) bool {
	observability.RecordCandidateAnalyzed()

	d, err := o.engine.Evaluate(ctx, decision.IdentityFromSnapshot(snap), decision.FeaturesFromSnapshot(snap))
	if err != nil {
		observability.RecordAnalysisError()
		o.logger.Printf("analysis of %s failed: %v", snap.Symbol, err)
		return false
	}

	confidence := d.Confidence
	rationale := d.Rationale
	if watchlisted {
		confidence *= watchlistBoost
		if confidence > 1.0 {
			confidence = 1.0
		}
		rationale += boostAnnotation
	}

	if !d.Accept || confidence <= confidenceThreshold {
		o.logv("skipping %s: accept=%v confidence=%.2f", snap.Symbol, d.Accept, confidence)
		return false
	}

	if err := o.openPosition(ctx, snap, d.SuggestedSize, confidence, rationale, cfg); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false
		}
		observability.RecordAnalysisError()
		o.logger.Printf("open position for %s failed: %v", snap.Symbol, err)
		return false
	}
	return true
}

// openPosition sizes and persists a new active position. Size is the
// engine suggestion clipped to the configured investment cap.
func (o *Orchestrator) openPosition(ctx context.Context, snap *domain.TokenSnapshot, suggested *decimal.Decimal, confidence float64, rationale string, cfg domain.BotConfig) error {
	price := decimal.NewFromFloat(snap.Price)
	if !price.IsPositive() {
		return fmt.Errorf("non-positive price for %s", snap.Symbol)
	}

	size := cfg.MaxInvestment
	if suggested != nil && suggested.IsPositive() && suggested.LessThan(size) {
		size = *suggested
	}

	nowMs := time.Now().UnixMilli()
	pos := &domain.Position{
		ID:           idhash.ComputePositionID(cfg.StrategyProfile, snap.PairAddress, snap.Symbol, nowMs),
		Profile:      cfg.StrategyProfile,
		PoolAddress:  snap.PairAddress,
		BaseSymbol:   snap.Symbol,
		QuoteSymbol:  quoteSymbol,
		BaseAmount:   size.Div(price),
		QuoteAmount:  size,
		EntryPrice:   price,
		CurrentPrice: price,
		OpenedAt:     nowMs,
		Status:       domain.PositionActive,
		PnL:          decimal.Zero,
		APY:          decimal.Zero,
	}

	if err := o.positions.Insert(ctx, pos); err != nil {
		return err
	}

	observability.RecordPositionOpened()
	o.logger.Printf("opened %s position: size=%s price=%s confidence=%.2f rationale=%q",
		snap.Symbol, size, price, confidence, rationale)
	return nil
}

// refreshPositions re-prices every active position via symbol lookup.
// Lookup failures are soft: the position keeps its last known price.
func (o *Orchestrator) refreshPositions(ctx context.Context) {
	active, err := o.positions.ListActive(ctx)
	if err != nil {
		o.logger.Printf("price refresh: list active positions: %v", err)
		return
	}

	for _, pos := range active {
		snap, err := o.market.BySymbol(ctx, pos.BaseSymbol)
		if err != nil {
			o.logv("price refresh: %s lookup failed: %v", pos.BaseSymbol, err)
			continue
		}

		pos.Refresh(decimal.NewFromFloat(snap.Price), time.Now().UnixMilli())
		if err := o.positions.UpdatePrice(ctx, pos.ID, pos.CurrentPrice, pos.PnL, pos.APY); err != nil {
			o.logger.Printf("price refresh: update %s: %v", pos.ID, err)
		}
	}
}

// archiveSnapshots appends the cycle's snapshots to the analytics
// archive. Best-effort: archive failures never fail the cycle.
func (o *Orchestrator) archiveSnapshots(ctx context.Context, snaps []*domain.TokenSnapshot) {
	if o.archive == nil || len(snaps) == 0 {
		return
	}
	if err := o.archive.InsertBulk(ctx, snaps); err != nil {
		o.logger.Printf("snapshot archive: %v", err)
	}
}

// updateStatus recomputes the observable portfolio numbers.
func (o *Orchestrator) updateStatus(ctx context.Context) error {
	active, err := o.positions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("status refresh: %w", err)
	}

	total := decimal.Zero
	for _, pos := range active {
		total = total.Add(pos.NotionalValue())
	}

	o.mu.Lock()
	o.status.LastPoll = time.Now()
	o.status.OpenPositions = len(active)
	o.status.TotalValue = total
	o.mu.Unlock()

	value, _ := total.Float64()
	observability.UpdatePortfolio(len(active), value)
	return nil
}

func (o *Orchestrator) logv(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf(format, args...)
	}
}

func heldSymbols(positions []*domain.Position) map[string]bool {
	held := make(map[string]bool, len(positions))
	for _, p := range positions {
		held[p.BaseSymbol] = true
	}
	return held
}
