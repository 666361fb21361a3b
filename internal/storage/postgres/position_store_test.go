package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

func testPosition(id string, openedAt int64) *domain.Position {
	return &domain.Position{
		ID:           id,
		Profile:      domain.ProfileBalanced,
		PoolAddress:  "pool-" + id,
		BaseSymbol:   "PEPE",
		QuoteSymbol:  "USDC",
		BaseAmount:   decimal.RequireFromString("1000"),
		QuoteAmount:  decimal.RequireFromString("100"),
		EntryPrice:   decimal.RequireFromString("0.1"),
		CurrentPrice: decimal.RequireFromString("0.1"),
		OpenedAt:     openedAt,
		Status:       domain.PositionActive,
		PnL:          decimal.Zero,
		APY:          decimal.Zero,
	}
}

func TestPositionStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	pos := testPosition("pos1", 1000)
	require.NoError(t, store.Insert(ctx, pos))

	got, err := store.GetByID(ctx, "pos1")
	require.NoError(t, err)

	assert.Equal(t, "PEPE", got.BaseSymbol)
	assert.True(t, got.QuoteAmount.Equal(decimal.RequireFromString("100")),
		"quote amount mismatch: %s", got.QuoteAmount)
	assert.Equal(t, domain.PositionActive, got.Status)
	assert.Nil(t, got.ClosedAt)
}

func TestPositionStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("pos1", 1000)))

	err := store.Insert(ctx, testPosition("pos1", 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPositionStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)

	_, err := store.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPositionStore_ListActiveOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("p1", 3000)))
	require.NoError(t, store.Insert(ctx, testPosition("p2", 1000)))

	closed := testPosition("p3", 2000)
	closed.Status = domain.PositionClosed
	require.NoError(t, store.Insert(ctx, closed))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)

	require.Len(t, active, 2)
	assert.Equal(t, "p2", active[0].ID)
	assert.Equal(t, "p1", active[1].ID)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPositionStore_UpdatePriceAndClose(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("p1", 1000)))

	price := decimal.RequireFromString("0.25")
	pnl := decimal.RequireFromString("150")
	apy := decimal.RequireFromString("730.5")
	require.NoError(t, store.UpdatePrice(ctx, "p1", price, pnl, apy))

	got, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(price), "current price: %s", got.CurrentPrice)
	assert.True(t, got.PnL.Equal(pnl), "pnl: %s", got.PnL)
	assert.True(t, got.APY.Equal(apy), "apy: %s", got.APY)

	require.NoError(t, store.Close(ctx, "p1", 9000))

	got, err = store.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.PositionClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, int64(9000), *got.ClosedAt)

	assert.ErrorIs(t, store.UpdatePrice(ctx, "missing", price, pnl, apy), storage.ErrNotFound)
	assert.ErrorIs(t, store.Close(ctx, "missing", 1), storage.ErrNotFound)
}
