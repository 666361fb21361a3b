package domain

import "github.com/shopspring/decimal"

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	PositionActive  PositionStatus = "active"
	PositionPending PositionStatus = "pending"
	PositionClosed  PositionStatus = "closed"
)

const msPerYear = 365 * 24 * 3600 * 1000

// Position is an open or closed trading position. Positions are created
// by the bot when a decision is accepted, mutated only by price refresh
// and close, and never deleted.
type Position struct {
	ID           string // deterministic hash, see idhash
	Profile      StrategyProfile
	PoolAddress  string
	BaseSymbol   string
	QuoteSymbol  string
	BaseAmount   decimal.Decimal // size / entry price
	QuoteAmount  decimal.Decimal // committed capital
	EntryPrice   decimal.Decimal
	CurrentPrice decimal.Decimal // refreshed from market data, not re-derived
	OpenedAt     int64           // Unix timestamp in milliseconds
	Status       PositionStatus
	PnL          decimal.Decimal
	APY          decimal.Decimal // annualized return, percent
	ClosedAt     *int64
}

// NotionalValue returns base amount times current price.
func (p *Position) NotionalValue() decimal.Decimal {
	return p.BaseAmount.Mul(p.CurrentPrice)
}

// Refresh updates the current price and recomputes running P&L and APY.
// APY annualizes the return over the hold duration so far.
func (p *Position) Refresh(price decimal.Decimal, nowMs int64) {
	p.CurrentPrice = price
	p.PnL = price.Sub(p.EntryPrice).Mul(p.BaseAmount)

	heldMs := nowMs - p.OpenedAt
	if heldMs <= 0 || p.QuoteAmount.IsZero() {
		p.APY = decimal.Zero
		return
	}

	returnPct := p.PnL.Div(p.QuoteAmount).Mul(decimal.NewFromInt(100))
	p.APY = returnPct.Mul(decimal.NewFromInt(msPerYear)).Div(decimal.NewFromInt(heldMs))
}
