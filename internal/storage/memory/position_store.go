package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Position // keyed by position ID
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data: make(map[string]*domain.Position),
	}
}

// Insert adds a new position. Returns ErrDuplicateKey if the ID exists.
func (s *PositionStore) Insert(_ context.Context, p *domain.Position) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	posCopy := *p
	s.data[p.ID] = &posCopy
	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(_ context.Context, id string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	posCopy := *p
	return &posCopy, nil
}

// ListActive retrieves all active positions, ordered by opened_at ASC.
func (s *PositionStore) ListActive(_ context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Status == domain.PositionActive {
			posCopy := *p
			result = append(result, &posCopy)
		}
	}

	sortPositions(result)
	return result, nil
}

// ListAll retrieves all positions regardless of status, ordered by opened_at ASC.
func (s *PositionStore) ListAll(_ context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Position, 0, len(s.data))
	for _, p := range s.data {
		posCopy := *p
		result = append(result, &posCopy)
	}

	sortPositions(result)
	return result, nil
}

// UpdatePrice refreshes current price, P&L and APY for a position.
func (s *PositionStore) UpdatePrice(_ context.Context, id string, price, pnl, apy decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	p.CurrentPrice = price
	p.PnL = pnl
	p.APY = apy
	return nil
}

// Close transitions a position to closed. Returns ErrNotFound if not exists.
func (s *PositionStore) Close(_ context.Context, id string, closedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	p.Status = domain.PositionClosed
	p.ClosedAt = &closedAt
	return nil
}

// sortPositions orders by opened_at ASC with ID as tiebreaker.
func sortPositions(positions []*domain.Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].OpenedAt != positions[j].OpenedAt {
			return positions[i].OpenedAt < positions[j].OpenedAt
		}
		return positions[i].ID < positions[j].ID
	})
}

// Verify interface compliance at compile time.
var _ storage.PositionStore = (*PositionStore)(nil)
