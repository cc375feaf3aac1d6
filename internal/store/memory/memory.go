package memory

import (
	"context"
	"sync"

	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/store"
)

// Store keeps the snapshot in memory. Used for tests and local development;
// last write wins, matching the contract of the real backends.
type Store struct {
	mu   sync.RWMutex
	snap store.Snapshot
}

func New() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap), nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
	return nil
}

// copySnapshot keeps callers from aliasing the stored slices.
func copySnapshot(snap store.Snapshot) store.Snapshot {
	out := store.Snapshot{
		Products: make([]domain.Product, len(snap.Products)),
		History:  make([]domain.HistoryEvent, len(snap.History)),
	}
	copy(out.Products, snap.Products)
	copy(out.History, snap.History)
	return out
}
