// Package marketdata implements a rate-limited, TTL-cached client for the
// token discovery API. All network calls are spaced by a sequential gate
// so the client stays inside the provider's request budget regardless of
// how many goroutines share it.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/mr-tron/base58"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.dexscreener.com"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMinInterval = 1000 * time.Millisecond
	DefaultSearchTTL   = 5 * time.Minute
	DefaultDetailTTL   = 30 * time.Minute

	minQueryLength     = 2
	maxTrendingResults = 50
)

// Client is the discovery API client. Safe for concurrent use.
type Client struct {
	rest      *resty.Client
	cache     *ttlCache
	gate      *rateGate
	chains    []domain.Chain
	searchTTL time.Duration
	detailTTL time.Duration
	logger    *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the provider base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.rest.SetBaseURL(url)
	}
}

// WithHTTPTimeout sets the per-request HTTP timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

// WithMinInterval sets the minimum spacing between dispatched requests.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.gate = newRateGate(d)
	}
}

// WithTTLs sets the cache lifetimes for search/trending and detail lookups.
func WithTTLs(search, detail time.Duration) ClientOption {
	return func(c *Client) {
		c.searchTTL = search
		c.detailTTL = detail
	}
}

// WithChains restricts which chains trending fan-out covers.
func WithChains(chains ...domain.Chain) ClientOption {
	return func(c *Client) {
		c.chains = chains
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a discovery client with default settings.
func NewClient(opts ...ClientOption) *Client {
	rest := resty.New()
	rest.SetBaseURL(DefaultBaseURL)
	rest.SetTimeout(DefaultHTTPTimeout)

	c := &Client{
		rest:      rest,
		cache:     newTTLCache(),
		gate:      newRateGate(DefaultMinInterval),
		chains:    domain.AllChains(),
		searchTTL: DefaultSearchTTL,
		detailTTL: DefaultDetailTTL,
		logger:    log.New(os.Stdout, "[marketdata] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the discovery API by name or symbol fragment. Queries
// shorter than 2 characters are rejected with ErrInvalidQuery before any
// network I/O. Filters are applied client-side after the fetch.
func (c *Client) Search(ctx context.Context, query string, filters Filters) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, ErrInvalidQuery
	}

	key := "search|" + strings.ToLower(query) + "|" + filters.cacheKey()
	if v, ok := c.cache.get(key); ok {
		observability.RecordCacheLookup("search", true)
		return v.(*SearchResult), nil
	}
	observability.RecordCacheLookup("search", false)

	payload, err := c.doGet(ctx, "search", "/latest/dex/search", map[string]string{"q": query})
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now()
	result := &SearchResult{TotalCount: len(payload.Pairs)}
	for _, p := range payload.Pairs {
		snap := p.toSnapshot(fetchedAt)
		if filters.match(snap) {
			result.Tokens = append(result.Tokens, snap)
		}
	}
	result.HasMore = len(result.Tokens) < result.TotalCount

	c.cache.set(key, result, c.searchTTL)
	return result, nil
}

// Trending returns the hottest pairs across the configured chains, sorted
// by 24h volume descending and truncated to 50 entries. A ChainID filter
// pins the fan-out to a single chain.
func (c *Client) Trending(ctx context.Context, filters Filters) ([]*domain.TokenSnapshot, error) {
	key := "trending|" + filters.cacheKey()
	if v, ok := c.cache.get(key); ok {
		observability.RecordCacheLookup("trending", true)
		return v.([]*domain.TokenSnapshot), nil
	}
	observability.RecordCacheLookup("trending", false)

	chains := c.chains
	if filters.ChainID != "" {
		chains = []domain.Chain{filters.ChainID}
	}

	var merged []*domain.TokenSnapshot
	for _, chain := range chains {
		payload, err := c.doGet(ctx, "trending", "/latest/dex/trending/"+string(chain), nil)
		if err != nil {
			return nil, err
		}
		fetchedAt := time.Now()
		for _, p := range payload.Pairs {
			snap := p.toSnapshot(fetchedAt)
			if filters.match(snap) {
				merged = append(merged, snap)
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Volume24h > merged[j].Volume24h
	})
	if len(merged) > maxTrendingResults {
		merged = merged[:maxTrendingResults]
	}

	c.cache.set(key, merged, c.searchTTL)
	return merged, nil
}

// Detail fetches a single pair by address. Returns ErrNotFound when the
// provider has no data for the pair; malformed solana addresses are
// rejected before dispatch.
func (c *Client) Detail(ctx context.Context, pairAddress string, chainID domain.Chain) (*domain.TokenSnapshot, error) {
	if chainID == domain.ChainSolana {
		if _, err := base58.Decode(pairAddress); err != nil {
			return nil, ErrNotFound
		}
	}

	key := "detail|" + string(chainID) + "|" + pairAddress
	if v, ok := c.cache.get(key); ok {
		observability.RecordCacheLookup("detail", true)
		return v.(*domain.TokenSnapshot), nil
	}
	observability.RecordCacheLookup("detail", false)

	path := fmt.Sprintf("/latest/dex/pairs/%s/%s", chainID, pairAddress)
	payload, err := c.doGet(ctx, "detail", path, nil)
	if err != nil {
		return nil, err
	}
	if len(payload.Pairs) == 0 {
		return nil, ErrNotFound
	}

	snap := payload.Pairs[0].toSnapshot(time.Now())
	c.cache.set(key, snap, c.detailTTL)
	return snap, nil
}

// BySymbol resolves a symbol to its most liquid pair across all chains.
// Matching is case-insensitive on the base symbol; ties break by 24h
// volume. Returns ErrNotFound when nothing matches.
func (c *Client) BySymbol(ctx context.Context, symbol string) (*domain.TokenSnapshot, error) {
	symbol = strings.TrimSpace(symbol)
	if utf8.RuneCountInString(symbol) < minQueryLength {
		return nil, ErrInvalidQuery
	}

	key := "bysymbol|" + strings.ToUpper(symbol)
	if v, ok := c.cache.get(key); ok {
		observability.RecordCacheLookup("by_symbol", true)
		return v.(*domain.TokenSnapshot), nil
	}
	observability.RecordCacheLookup("by_symbol", false)

	payload, err := c.doGet(ctx, "by_symbol", "/latest/dex/search", map[string]string{"q": symbol})
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now()
	var best *domain.TokenSnapshot
	for _, p := range payload.Pairs {
		if !strings.EqualFold(p.BaseToken.Symbol, symbol) {
			continue
		}
		snap := p.toSnapshot(fetchedAt)
		if best == nil || snap.Volume24h > best.Volume24h {
			best = snap
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}

	c.cache.set(key, best, c.searchTTL)
	return best, nil
}

// doGet dispatches one GET through the rate gate and decodes the shared
// pairs envelope. 404 responses map to ErrNotFound, other non-2xx to
// *ProviderError.
func (c *Client) doGet(ctx context.Context, op, path string, query map[string]string) (*pairsResponse, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	req := c.rest.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		observability.RecordProviderRequest(op, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("discovery %s request: %w", op, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		observability.RecordProviderRequest(op, "not_found", time.Since(start).Seconds())
		return nil, ErrNotFound
	case resp.StatusCode() != http.StatusOK:
		observability.RecordProviderRequest(op, "error", time.Since(start).Seconds())
		c.logger.Printf("%s request failed: status %d", op, resp.StatusCode())
		return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode()}
	}

	var payload pairsResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		observability.RecordProviderRequest(op, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}

	observability.RecordProviderRequest(op, "ok", time.Since(start).Seconds())
	return &payload, nil
}
