package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

const positionColumns = `
	position_id, profile, pool_address, base_symbol, quote_symbol,
	base_amount, quote_amount, entry_price, current_price,
	opened_at, status, pnl, apy, closed_at
`

// Insert adds a new position. Returns ErrDuplicateKey if the ID exists.
func (s *PositionStore) Insert(ctx context.Context, p *domain.Position) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Profile), p.PoolAddress, p.BaseSymbol, p.QuoteSymbol,
		p.BaseAmount, p.QuoteAmount, p.EntryPrice, p.CurrentPrice,
		p.OpenedAt, string(p.Status), p.PnL, p.APY, p.ClosedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(ctx context.Context, id string) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE position_id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	p, err := scanPosition(row)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("get position by id: %w", err)
	}
	return p, nil
}

// ListActive retrieves all active positions, ordered by opened_at ASC.
func (s *PositionStore) ListActive(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE status = 'active'
		ORDER BY opened_at ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// ListAll retrieves all positions regardless of status, ordered by opened_at ASC.
func (s *PositionStore) ListAll(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		ORDER BY opened_at ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// UpdatePrice refreshes current price, P&L and APY for a position.
func (s *PositionStore) UpdatePrice(ctx context.Context, id string, price, pnl, apy decimal.Decimal) error {
	query := `
		UPDATE positions
		SET current_price = $2, pnl = $3, apy = $4
		WHERE position_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, price, pnl, apy)
	if err != nil {
		return fmt.Errorf("update position price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close transitions a position to closed. Returns ErrNotFound if not exists.
func (s *PositionStore) Close(ctx context.Context, id string, closedAt int64) error {
	query := `
		UPDATE positions
		SET status = 'closed', closed_at = $2
		WHERE position_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, closedAt)
	if err != nil {
		return fmt.Errorf("close position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanPosition scans a single row into a Position.
func scanPosition(row pgx.Row) (*domain.Position, error) {
	var p domain.Position
	var profile, status string

	err := row.Scan(
		&p.ID, &profile, &p.PoolAddress, &p.BaseSymbol, &p.QuoteSymbol,
		&p.BaseAmount, &p.QuoteAmount, &p.EntryPrice, &p.CurrentPrice,
		&p.OpenedAt, &status, &p.PnL, &p.APY, &p.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Profile = domain.StrategyProfile(profile)
	p.Status = domain.PositionStatus(status)
	return &p, nil
}

// scanPositions scans multiple rows into a slice of Position.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position

	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
