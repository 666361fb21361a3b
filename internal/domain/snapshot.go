package domain

// TokenSnapshot is a point-in-time market read for one token/pair.
// Snapshots are immutable once constructed; a fresh fetch supersedes
// an older one, it never mutates it.
type TokenSnapshot struct {
	Symbol         string  // base token symbol
	Name           string  // display name
	Price          float64 // quote-denominated price
	PriceChange1h  float64 // percent
	PriceChange6h  float64 // percent
	PriceChange24h float64 // percent
	Volume5m       float64
	Volume1h       float64
	Volume24h      float64
	MarketCap      float64
	Liquidity      float64
	AgeHours       float64 // elapsed time since pair creation
	Holders        int
	Txns24h        int
	PairAddress    string
	ChainID        Chain
	DexID          string // venue identifier
	TokenAddress   string // underlying contract address (may be empty)
	FetchedAt      int64  // Unix timestamp in milliseconds
}
