package marketdata

import (
	"fmt"
	"strconv"
	"time"

	"token-autotrader/internal/domain"
)

// Filters narrows discovery results client-side. Zero values mean "no
// constraint".
type Filters struct {
	ChainID      domain.Chain
	MinVolume24h float64
	MinMarketCap float64
}

func (f Filters) match(s *domain.TokenSnapshot) bool {
	if f.ChainID != "" && s.ChainID != f.ChainID {
		return false
	}
	if f.MinVolume24h > 0 && s.Volume24h < f.MinVolume24h {
		return false
	}
	if f.MinMarketCap > 0 && s.MarketCap < f.MinMarketCap {
		return false
	}
	return true
}

func (f Filters) cacheKey() string {
	return fmt.Sprintf("%s|%.2f|%.2f", f.ChainID, f.MinVolume24h, f.MinMarketCap)
}

// SearchResult is the filtered outcome of one search query.
type SearchResult struct {
	Tokens     []*domain.TokenSnapshot
	TotalCount int  // matches before client-side filtering
	HasMore    bool // true when filtering dropped some matches
}

// Provider wire format.

type pairsResponse struct {
	Pairs []pairPayload `json:"pairs"`
}

type pairPayload struct {
	ChainID       string           `json:"chainId"`
	DexID         string           `json:"dexId"`
	PairAddress   string           `json:"pairAddress"`
	BaseToken     tokenPayload     `json:"baseToken"`
	PriceUSD      string           `json:"priceUsd"`
	PriceChange   changePayload    `json:"priceChange"`
	Volume        volumePayload    `json:"volume"`
	Liquidity     liquidityPayload `json:"liquidity"`
	MarketCap     float64          `json:"marketCap"`
	FDV           float64          `json:"fdv"`
	Holders       int              `json:"holders"`
	PairCreatedAt int64            `json:"pairCreatedAt"` // ms
	Txns          txnsPayload      `json:"txns"`
}

type tokenPayload struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type changePayload struct {
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type volumePayload struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

type liquidityPayload struct {
	USD float64 `json:"usd"`
}

type txnsPayload struct {
	H24 txnCounts `json:"h24"`
}

type txnCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// toSnapshot converts one provider pair into the domain representation.
// Unparseable prices become zero rather than failing the whole batch.
func (p pairPayload) toSnapshot(fetchedAt time.Time) *domain.TokenSnapshot {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)

	marketCap := p.MarketCap
	if marketCap == 0 {
		marketCap = p.FDV
	}

	fetchedMs := fetchedAt.UnixMilli()
	var ageHours float64
	if p.PairCreatedAt > 0 && p.PairCreatedAt < fetchedMs {
		ageHours = float64(fetchedMs-p.PairCreatedAt) / float64(time.Hour.Milliseconds())
	}

	return &domain.TokenSnapshot{
		Symbol:         p.BaseToken.Symbol,
		Name:           p.BaseToken.Name,
		Price:          price,
		PriceChange1h:  p.PriceChange.H1,
		PriceChange6h:  p.PriceChange.H6,
		PriceChange24h: p.PriceChange.H24,
		Volume5m:       p.Volume.M5,
		Volume1h:       p.Volume.H1,
		Volume24h:      p.Volume.H24,
		MarketCap:      marketCap,
		Liquidity:      p.Liquidity.USD,
		AgeHours:       ageHours,
		Holders:        p.Holders,
		Txns24h:        p.Txns.H24.Buys + p.Txns.H24.Sells,
		PairAddress:    p.PairAddress,
		ChainID:        domain.Chain(p.ChainID),
		DexID:          p.DexID,
		TokenAddress:   p.BaseToken.Address,
		FetchedAt:      fetchedMs,
	}
}
