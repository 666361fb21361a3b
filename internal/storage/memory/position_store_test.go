package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

func newTestPosition(id string, openedAt int64, status domain.PositionStatus) *domain.Position {
	return &domain.Position{
		ID:           id,
		Profile:      domain.ProfileBalanced,
		PoolAddress:  "pool-" + id,
		BaseSymbol:   "PEPE",
		QuoteSymbol:  "USDC",
		BaseAmount:   decimal.NewFromInt(1000),
		QuoteAmount:  decimal.NewFromInt(100),
		EntryPrice:   decimal.NewFromFloat(0.1),
		CurrentPrice: decimal.NewFromFloat(0.1),
		OpenedAt:     openedAt,
		Status:       status,
	}
}

func TestPositionStore_InsertAndGet(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	pos := newTestPosition("pos1", 1000, domain.PositionActive)

	if err := store.Insert(ctx, pos); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "pos1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if !got.QuoteAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("QuoteAmount mismatch: got %s, want 100", got.QuoteAmount)
	}
	if got.Status != domain.PositionActive {
		t.Errorf("Status mismatch: got %s", got.Status)
	}
}

func TestPositionStore_DuplicateKey(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	pos := newTestPosition("pos1", 1000, domain.PositionActive)

	if err := store.Insert(ctx, pos); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, pos)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPositionStore_NotFound(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPositionStore_ListActiveExcludesClosed(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestPosition("p1", 1000, domain.PositionActive)); err != nil {
		t.Fatalf("Insert p1: %v", err)
	}
	if err := store.Insert(ctx, newTestPosition("p2", 2000, domain.PositionClosed)); err != nil {
		t.Fatalf("Insert p2: %v", err)
	}
	if err := store.Insert(ctx, newTestPosition("p3", 500, domain.PositionActive)); err != nil {
		t.Fatalf("Insert p3: %v", err)
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}

	if len(active) != 2 {
		t.Fatalf("Expected 2 active positions, got %d", len(active))
	}

	// Ordered by opened_at ASC
	if active[0].ID != "p3" || active[1].ID != "p1" {
		t.Errorf("Unexpected order: %s, %s", active[0].ID, active[1].ID)
	}
}

func TestPositionStore_UpdatePrice(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestPosition("p1", 1000, domain.PositionActive)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	price := decimal.NewFromFloat(0.2)
	pnl := decimal.NewFromInt(100)
	apy := decimal.NewFromInt(500)

	if err := store.UpdatePrice(ctx, "p1", price, pnl, apy); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "p1")
	if !got.CurrentPrice.Equal(price) {
		t.Errorf("CurrentPrice not updated: got %s", got.CurrentPrice)
	}
	if !got.PnL.Equal(pnl) {
		t.Errorf("PnL not updated: got %s", got.PnL)
	}

	err := store.UpdatePrice(ctx, "missing", price, pnl, apy)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing position, got %v", err)
	}
}

func TestPositionStore_Close(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestPosition("p1", 1000, domain.PositionActive)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := store.Close(ctx, "p1", 5000); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "p1")
	if got.Status != domain.PositionClosed {
		t.Errorf("Expected closed status, got %s", got.Status)
	}
	if got.ClosedAt == nil || *got.ClosedAt != 5000 {
		t.Error("ClosedAt not set")
	}

	// Closed positions remain listed by ListAll but not ListActive
	active, _ := store.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("Expected 0 active after close, got %d", len(active))
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("Expected 1 total after close, got %d", len(all))
	}
}

func TestPositionStore_InvalidInput(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Position{ID: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestPositionStore_CopyOnRead(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestPosition("p1", 1000, domain.PositionActive)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, _ := store.GetByID(ctx, "p1")
	got.Status = domain.PositionClosed

	again, _ := store.GetByID(ctx, "p1")
	if again.Status != domain.PositionActive {
		t.Error("Mutating a returned position leaked into the store")
	}
}
