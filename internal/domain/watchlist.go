package domain

// Watchlist is a named, user-curated set of tokens that receives
// priority treatment during scanning.
type Watchlist struct {
	ID        string
	Name      string
	CreatedAt int64 // Unix timestamp in milliseconds
	UpdatedAt int64
}

// WatchlistToken is one token reference inside a watchlist. The same
// symbol may appear in multiple watchlists.
type WatchlistToken struct {
	WatchlistID string
	Symbol      string
	Name        string
	PairAddress string
	ChainID     Chain
	AddedAt     int64 // Unix timestamp in milliseconds
}
