package memory

import (
	"context"
	"sort"
	"sync"

	"token-autotrader/internal/domain"
	"token-autotrader/internal/storage"
)

// SnapshotArchive is an in-memory implementation of storage.SnapshotArchive.
type SnapshotArchive struct {
	mu   sync.RWMutex
	data []*domain.TokenSnapshot
}

// NewSnapshotArchive creates a new in-memory snapshot archive.
func NewSnapshotArchive() *SnapshotArchive {
	return &SnapshotArchive{}
}

// InsertBulk appends a batch of snapshots.
func (s *SnapshotArchive) InsertBulk(_ context.Context, snaps []*domain.TokenSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if snap == nil {
			return storage.ErrInvalidInput
		}
		snapCopy := *snap
		s.data = append(s.data, &snapCopy)
	}
	return nil
}

// GetBySymbol retrieves archived snapshots for a symbol within [from, to]
// milliseconds inclusive, ordered by fetched_at ASC.
func (s *SnapshotArchive) GetBySymbol(_ context.Context, symbol string, from, to int64) ([]*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenSnapshot
	for _, snap := range s.data {
		if snap.Symbol == symbol && snap.FetchedAt >= from && snap.FetchedAt <= to {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FetchedAt < result[j].FetchedAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)
