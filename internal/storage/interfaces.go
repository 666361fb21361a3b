package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"token-autotrader/internal/domain"
)

// PositionStore provides access to trading position storage.
// Positions are never deleted; a close transitions status only.
type PositionStore interface {
	// Insert adds a new position. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, p *domain.Position) error

	// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Position, error)

	// ListActive retrieves all positions with status active, ordered by opened_at ASC.
	ListActive(ctx context.Context) ([]*domain.Position, error)

	// ListAll retrieves all positions regardless of status, ordered by opened_at ASC.
	ListAll(ctx context.Context) ([]*domain.Position, error)

	// UpdatePrice refreshes current price, P&L and APY for a position.
	// Returns ErrNotFound if the position does not exist.
	UpdatePrice(ctx context.Context, id string, price, pnl, apy decimal.Decimal) error

	// Close transitions a position to closed. Returns ErrNotFound if not exists.
	Close(ctx context.Context, id string, closedAt int64) error
}

// WatchlistStore provides access to watchlist storage.
type WatchlistStore interface {
	// Insert adds a new watchlist. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, w *domain.Watchlist) error

	// GetByID retrieves a watchlist by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Watchlist, error)

	// ListAll retrieves all watchlists, ordered by created_at ASC.
	ListAll(ctx context.Context) ([]*domain.Watchlist, error)

	// Delete removes a watchlist and its token entries.
	// Returns ErrNotFound if the watchlist does not exist.
	Delete(ctx context.Context, id string) error

	// AddToken adds a token entry to a watchlist. Returns ErrDuplicateKey
	// if the (watchlist, symbol) pair exists, ErrNotFound for an unknown
	// watchlist.
	AddToken(ctx context.Context, t *domain.WatchlistToken) error

	// RemoveToken removes a token entry from one watchlist. Returns
	// ErrNotFound if the entry does not exist.
	RemoveToken(ctx context.Context, watchlistID, symbol string) error

	// ListTokens retrieves all token entries of one watchlist, ordered by added_at ASC.
	ListTokens(ctx context.Context, watchlistID string) ([]*domain.WatchlistToken, error)

	// ListAllTokens retrieves token entries across all watchlists.
	ListAllTokens(ctx context.Context) ([]*domain.WatchlistToken, error)

	// IsTokenWatchlisted reports whether the symbol appears in at least
	// one watchlist.
	IsTokenWatchlisted(ctx context.Context, symbol string) (bool, error)
}

// SnapshotArchive records market snapshots for later analysis.
// Append-only; duplicates are acceptable and not rejected.
type SnapshotArchive interface {
	// InsertBulk appends a batch of snapshots.
	InsertBulk(ctx context.Context, snaps []*domain.TokenSnapshot) error

	// GetBySymbol retrieves archived snapshots for a symbol within
	// [from, to] milliseconds inclusive, ordered by fetched_at ASC.
	GetBySymbol(ctx context.Context, symbol string, from, to int64) ([]*domain.TokenSnapshot, error)
}
