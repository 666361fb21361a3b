package memory

import (
	"context"
	"errors"
	"testing"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

func TestWatchlistStore_InsertAndGet(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	w := &domain.Watchlist{ID: "w1", Name: "memes", CreatedAt: 1000, UpdatedAt: 1000}

	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "w1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "memes" {
		t.Errorf("Name mismatch: got %s", got.Name)
	}
}

func TestWatchlistStore_DuplicateKey(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	w := &domain.Watchlist{ID: "w1", Name: "memes", CreatedAt: 1000}
	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, w)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestWatchlistStore_AddAndListTokens(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Watchlist{ID: "w1", Name: "memes", CreatedAt: 1000}); err != nil {
		t.Fatalf("Insert watchlist: %v", err)
	}

	tokens := []*domain.WatchlistToken{
		{WatchlistID: "w1", Symbol: "PEPE", PairAddress: "pair1", ChainID: domain.ChainSolana, AddedAt: 2000},
		{WatchlistID: "w1", Symbol: "DOGE", PairAddress: "pair2", ChainID: domain.ChainBSC, AddedAt: 1000},
	}
	for _, tok := range tokens {
		if err := store.AddToken(ctx, tok); err != nil {
			t.Fatalf("AddToken %s: %v", tok.Symbol, err)
		}
	}

	got, err := store.ListTokens(ctx, "w1")
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(got))
	}

	// Ordered by added_at ASC
	if got[0].Symbol != "DOGE" || got[1].Symbol != "PEPE" {
		t.Errorf("Unexpected order: %s, %s", got[0].Symbol, got[1].Symbol)
	}
}

func TestWatchlistStore_AddTokenDuplicateSymbol(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Watchlist{ID: "w1", Name: "memes", CreatedAt: 1000}); err != nil {
		t.Fatalf("Insert watchlist: %v", err)
	}

	tok := &domain.WatchlistToken{WatchlistID: "w1", Symbol: "PEPE", AddedAt: 1000}
	if err := store.AddToken(ctx, tok); err != nil {
		t.Fatalf("First AddToken: %v", err)
	}

	err := store.AddToken(ctx, tok)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestWatchlistStore_AddTokenUnknownWatchlist(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	err := store.AddToken(ctx, &domain.WatchlistToken{WatchlistID: "missing", Symbol: "PEPE"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// A token held by two watchlists stays watchlisted until removed from both.
func TestWatchlistStore_TokenInMultipleWatchlists(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	for _, id := range []string{"w1", "w2"} {
		if err := store.Insert(ctx, &domain.Watchlist{ID: id, Name: id, CreatedAt: 1000}); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
		if err := store.AddToken(ctx, &domain.WatchlistToken{WatchlistID: id, Symbol: "PEPE", AddedAt: 1000}); err != nil {
			t.Fatalf("AddToken to %s: %v", id, err)
		}
	}

	if err := store.RemoveToken(ctx, "w1", "PEPE"); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}

	watchlisted, err := store.IsTokenWatchlisted(ctx, "PEPE")
	if err != nil {
		t.Fatalf("IsTokenWatchlisted: %v", err)
	}
	if !watchlisted {
		t.Error("PEPE should remain watchlisted via w2")
	}

	if err := store.RemoveToken(ctx, "w2", "PEPE"); err != nil {
		t.Fatalf("RemoveToken w2: %v", err)
	}

	watchlisted, _ = store.IsTokenWatchlisted(ctx, "PEPE")
	if watchlisted {
		t.Error("PEPE should no longer be watchlisted")
	}
}

func TestWatchlistStore_RemoveTokenNotFound(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	err := store.RemoveToken(ctx, "w1", "PEPE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWatchlistStore_DeleteRemovesTokens(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Watchlist{ID: "w1", Name: "memes", CreatedAt: 1000}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.AddToken(ctx, &domain.WatchlistToken{WatchlistID: "w1", Symbol: "PEPE", AddedAt: 1000}); err != nil {
		t.Fatalf("AddToken: %v", err)
	}

	if err := store.Delete(ctx, "w1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.GetByID(ctx, "w1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	watchlisted, _ := store.IsTokenWatchlisted(ctx, "PEPE")
	if watchlisted {
		t.Error("Token should not survive watchlist deletion")
	}
}

func TestWatchlistStore_ListAllTokens(t *testing.T) {
	store := NewWatchlistStore()
	ctx := context.Background()

	for _, id := range []string{"w1", "w2"} {
		if err := store.Insert(ctx, &domain.Watchlist{ID: id, Name: id, CreatedAt: 1000}); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}
	if err := store.AddToken(ctx, &domain.WatchlistToken{WatchlistID: "w1", Symbol: "PEPE", AddedAt: 2000}); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	if err := store.AddToken(ctx, &domain.WatchlistToken{WatchlistID: "w2", Symbol: "DOGE", AddedAt: 1000}); err != nil {
		t.Fatalf("AddToken: %v", err)
	}

	all, err := store.ListAllTokens(ctx)
	if err != nil {
		t.Fatalf("ListAllTokens: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(all))
	}
	if all[0].Symbol != "DOGE" {
		t.Errorf("Expected DOGE first (added_at ASC), got %s", all[0].Symbol)
	}
}
