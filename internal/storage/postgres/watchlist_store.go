package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// WatchlistStore implements storage.WatchlistStore using PostgreSQL.
type WatchlistStore struct {
	pool *Pool
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(pool *Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Insert adds a new watchlist. Returns ErrDuplicateKey if the ID exists.
func (s *WatchlistStore) Insert(ctx context.Context, w *domain.Watchlist) error {
	if w == nil || w.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO watchlists (watchlist_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, w.ID, w.Name, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert watchlist: %w", err)
	}
	return nil
}

// GetByID retrieves a watchlist by its ID. Returns ErrNotFound if not exists.
func (s *WatchlistStore) GetByID(ctx context.Context, id string) (*domain.Watchlist, error) {
	query := `
		SELECT watchlist_id, name, created_at, updated_at
		FROM watchlists
		WHERE watchlist_id = $1
	`

	var w domain.Watchlist
	err := s.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("get watchlist by id: %w", err)
	}
	return &w, nil
}

// ListAll retrieves all watchlists, ordered by created_at ASC.
func (s *WatchlistStore) ListAll(ctx context.Context) ([]*domain.Watchlist, error) {
	query := `
		SELECT watchlist_id, name, created_at, updated_at
		FROM watchlists
		ORDER BY created_at ASC, watchlist_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	defer rows.Close()

	var lists []*domain.Watchlist
	for rows.Next() {
		var w domain.Watchlist
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		lists = append(lists, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist rows: %w", err)
	}

	return lists, nil
}

// Delete removes a watchlist and its token entries in one transaction.
func (s *WatchlistStore) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM watchlist_tokens WHERE watchlist_id = $1`, id); err != nil {
		return fmt.Errorf("delete watchlist tokens: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM watchlists WHERE watchlist_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AddToken adds a token entry to a watchlist.
func (s *WatchlistStore) AddToken(ctx context.Context, t *domain.WatchlistToken) error {
	if t == nil || t.WatchlistID == "" || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	// Parent existence check first so an unknown watchlist maps to
	// ErrNotFound rather than a foreign key violation.
	if _, err := s.GetByID(ctx, t.WatchlistID); err != nil {
		return err
	}

	query := `
		INSERT INTO watchlist_tokens (watchlist_id, symbol, name, pair_address, chain_id, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		t.WatchlistID, t.Symbol, t.Name, t.PairAddress, string(t.ChainID), t.AddedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert watchlist token: %w", err)
	}
	return nil
}

// RemoveToken removes a token entry from one watchlist.
func (s *WatchlistStore) RemoveToken(ctx context.Context, watchlistID, symbol string) error {
	query := `DELETE FROM watchlist_tokens WHERE watchlist_id = $1 AND symbol = $2`

	tag, err := s.pool.Exec(ctx, query, watchlistID, symbol)
	if err != nil {
		return fmt.Errorf("remove watchlist token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTokens retrieves all token entries of one watchlist, ordered by added_at ASC.
func (s *WatchlistStore) ListTokens(ctx context.Context, watchlistID string) ([]*domain.WatchlistToken, error) {
	query := `
		SELECT watchlist_id, symbol, name, pair_address, chain_id, added_at
		FROM watchlist_tokens
		WHERE watchlist_id = $1
		ORDER BY added_at ASC, symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist tokens: %w", err)
	}
	defer rows.Close()

	return scanWatchlistTokens(rows)
}

// ListAllTokens retrieves token entries across all watchlists.
func (s *WatchlistStore) ListAllTokens(ctx context.Context) ([]*domain.WatchlistToken, error) {
	query := `
		SELECT watchlist_id, symbol, name, pair_address, chain_id, added_at
		FROM watchlist_tokens
		ORDER BY added_at ASC, symbol ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all watchlist tokens: %w", err)
	}
	defer rows.Close()

	return scanWatchlistTokens(rows)
}

// IsTokenWatchlisted reports whether the symbol appears in at least one watchlist.
func (s *WatchlistStore) IsTokenWatchlisted(ctx context.Context, symbol string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM watchlist_tokens WHERE symbol = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, symbol).Scan(&exists); err != nil {
		return false, fmt.Errorf("check token watchlisted: %w", err)
	}
	return exists, nil
}

// scanWatchlistTokens scans rows into a slice of WatchlistToken.
func scanWatchlistTokens(rows pgx.Rows) ([]*domain.WatchlistToken, error) {
	var tokens []*domain.WatchlistToken

	for rows.Next() {
		var t domain.WatchlistToken
		var chainID string
		if err := rows.Scan(&t.WatchlistID, &t.Symbol, &t.Name, &t.PairAddress, &chainID, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist token row: %w", err)
		}
		t.ChainID = domain.Chain(chainID)
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist token rows: %w", err)
	}

	return tokens, nil
}
