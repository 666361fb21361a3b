// Package decision defines the trade-decision contract the orchestrator
// delegates to. Scoring internals live behind the Engine interface; the
// orchestrator only consumes the verdict.
package decision

import (
	"context"

	"github.com/shopspring/decimal"

	"token-autotrader/internal/domain"
)

// TokenIdentity identifies the candidate being evaluated.
type TokenIdentity struct {
	Symbol      string
	Name        string
	PairAddress string
	ChainID     domain.Chain
}

// MarketFeatures is the numeric feature vector handed to the engine.
type MarketFeatures struct {
	Price          float64
	Volume1h       float64
	Volume24h      float64
	MarketCap      float64
	PriceChange1h  float64
	PriceChange24h float64
	Liquidity      float64
	AgeHours       float64
}

// TradeDecision is the engine's verdict for one candidate.
type TradeDecision struct {
	Accept        bool
	Confidence    float64          // [0.0, 1.0]
	SuggestedSize *decimal.Decimal // quote-denominated; nil means no suggestion
	Rationale     string
}

// Engine evaluates one candidate at a time. Implementations must be safe
// for concurrent use; a returned error means "no trade" for this candidate
// only.
type Engine interface {
	Evaluate(ctx context.Context, identity TokenIdentity, features MarketFeatures) (*TradeDecision, error)
}

// FeaturesFromSnapshot projects a market snapshot onto the engine's
// feature vector.
func FeaturesFromSnapshot(s *domain.TokenSnapshot) MarketFeatures {
	return MarketFeatures{
		Price:          s.Price,
		Volume1h:       s.Volume1h,
		Volume24h:      s.Volume24h,
		MarketCap:      s.MarketCap,
		PriceChange1h:  s.PriceChange1h,
		PriceChange24h: s.PriceChange24h,
		Liquidity:      s.Liquidity,
		AgeHours:       s.AgeHours,
	}
}

// IdentityFromSnapshot projects a market snapshot onto the engine's
// identity tuple.
func IdentityFromSnapshot(s *domain.TokenSnapshot) TokenIdentity {
	return TokenIdentity{
		Symbol:      s.Symbol,
		Name:        s.Name,
		PairAddress: s.PairAddress,
		ChainID:     s.ChainID,
	}
}
