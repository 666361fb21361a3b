package clickhouse

import (
	"context"
	"fmt"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// SnapshotArchive implements storage.SnapshotArchive using ClickHouse.
type SnapshotArchive struct {
	conn *Conn
}

// NewSnapshotArchive creates a new SnapshotArchive.
func NewSnapshotArchive(conn *Conn) *SnapshotArchive {
	return &SnapshotArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)

// InsertBulk appends a batch of snapshots.
func (s *SnapshotArchive) InsertBulk(ctx context.Context, snaps []*domain.TokenSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_snapshots (
			symbol, name, price, price_change_1h, price_change_6h, price_change_24h,
			volume_5m, volume_1h, volume_24h, market_cap, liquidity, age_hours,
			holders, txns_24h, pair_address, chain_id, dex_id, token_address, fetched_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot batch: %w", err)
	}

	for _, snap := range snaps {
		if snap == nil {
			return storage.ErrInvalidInput
		}
		err := batch.Append(
			snap.Symbol, snap.Name, snap.Price,
			snap.PriceChange1h, snap.PriceChange6h, snap.PriceChange24h,
			snap.Volume5m, snap.Volume1h, snap.Volume24h,
			snap.MarketCap, snap.Liquidity, snap.AgeHours,
			int32(snap.Holders), int32(snap.Txns24h),
			snap.PairAddress, string(snap.ChainID), snap.DexID, snap.TokenAddress,
			snap.FetchedAt,
		)
		if err != nil {
			return fmt.Errorf("append snapshot: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send snapshot batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves archived snapshots for a symbol within [from, to]
// milliseconds inclusive, ordered by fetched_at ASC.
func (s *SnapshotArchive) GetBySymbol(ctx context.Context, symbol string, from, to int64) ([]*domain.TokenSnapshot, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT
			symbol, name, price, price_change_1h, price_change_6h, price_change_24h,
			volume_5m, volume_1h, volume_24h, market_cap, liquidity, age_hours,
			holders, txns_24h, pair_address, chain_id, dex_id, token_address, fetched_at
		FROM token_snapshots
		WHERE symbol = ? AND fetched_at >= ? AND fetched_at <= ?
		ORDER BY fetched_at ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.TokenSnapshot
	for rows.Next() {
		var snap domain.TokenSnapshot
		var holders, txns int32
		var chainID string

		err := rows.Scan(
			&snap.Symbol, &snap.Name, &snap.Price,
			&snap.PriceChange1h, &snap.PriceChange6h, &snap.PriceChange24h,
			&snap.Volume5m, &snap.Volume1h, &snap.Volume24h,
			&snap.MarketCap, &snap.Liquidity, &snap.AgeHours,
			&holders, &txns,
			&snap.PairAddress, &chainID, &snap.DexID, &snap.TokenAddress,
			&snap.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.Holders = int(holders)
		snap.Txns24h = int(txns)
		snap.ChainID = domain.Chain(chainID)
		result = append(result, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return result, nil
}
