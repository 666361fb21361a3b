package memory

import (
	"context"
	"sort"
	"sync"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// WatchlistStore is an in-memory implementation of storage.WatchlistStore.
type WatchlistStore struct {
	mu     sync.RWMutex
	lists  map[string]*domain.Watchlist       // keyed by watchlist ID
	tokens map[string][]*domain.WatchlistToken // keyed by watchlist ID
}

// NewWatchlistStore creates a new in-memory watchlist store.
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{
		lists:  make(map[string]*domain.Watchlist),
		tokens: make(map[string][]*domain.WatchlistToken),
	}
}

// Insert adds a new watchlist. Returns ErrDuplicateKey if the ID exists.
func (s *WatchlistStore) Insert(_ context.Context, w *domain.Watchlist) error {
	if w == nil || w.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[w.ID]; exists {
		return storage.ErrDuplicateKey
	}

	listCopy := *w
	s.lists[w.ID] = &listCopy
	return nil
}

// GetByID retrieves a watchlist by its ID. Returns ErrNotFound if not exists.
func (s *WatchlistStore) GetByID(_ context.Context, id string) (*domain.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.lists[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	listCopy := *w
	return &listCopy, nil
}

// ListAll retrieves all watchlists, ordered by created_at ASC.
func (s *WatchlistStore) ListAll(_ context.Context) ([]*domain.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Watchlist, 0, len(s.lists))
	for _, w := range s.lists {
		listCopy := *w
		result = append(result, &listCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Delete removes a watchlist and its token entries.
func (s *WatchlistStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.lists, id)
	delete(s.tokens, id)
	return nil
}

// AddToken adds a token entry to a watchlist.
func (s *WatchlistStore) AddToken(_ context.Context, t *domain.WatchlistToken) error {
	if t == nil || t.WatchlistID == "" || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[t.WatchlistID]; !exists {
		return storage.ErrNotFound
	}

	for _, existing := range s.tokens[t.WatchlistID] {
		if existing.Symbol == t.Symbol {
			return storage.ErrDuplicateKey
		}
	}

	tokenCopy := *t
	s.tokens[t.WatchlistID] = append(s.tokens[t.WatchlistID], &tokenCopy)
	return nil
}

// RemoveToken removes a token entry from one watchlist.
func (s *WatchlistStore) RemoveToken(_ context.Context, watchlistID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.tokens[watchlistID]
	for i, t := range entries {
		if t.Symbol == symbol {
			s.tokens[watchlistID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	return storage.ErrNotFound
}

// ListTokens retrieves all token entries of one watchlist, ordered by added_at ASC.
func (s *WatchlistStore) ListTokens(_ context.Context, watchlistID string) ([]*domain.WatchlistToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WatchlistToken
	for _, t := range s.tokens[watchlistID] {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}

	sortWatchlistTokens(result)
	return result, nil
}

// ListAllTokens retrieves token entries across all watchlists.
func (s *WatchlistStore) ListAllTokens(_ context.Context) ([]*domain.WatchlistToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WatchlistToken
	for _, entries := range s.tokens {
		for _, t := range entries {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}

	sortWatchlistTokens(result)
	return result, nil
}

// IsTokenWatchlisted reports whether the symbol appears in at least one watchlist.
func (s *WatchlistStore) IsTokenWatchlisted(_ context.Context, symbol string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entries := range s.tokens {
		for _, t := range entries {
			if t.Symbol == symbol {
				return true, nil
			}
		}
	}

	return false, nil
}

// sortWatchlistTokens orders by added_at ASC with symbol as tiebreaker.
func sortWatchlistTokens(tokens []*domain.WatchlistToken) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].AddedAt != tokens[j].AddedAt {
			return tokens[i].AddedAt < tokens[j].AddedAt
		}
		return tokens[i].Symbol < tokens[j].Symbol
	})
}

// Verify interface compliance at compile time.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)
