// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/mercadofacil/backend-go/internal/domain"
)

// ErrConnection signals that the backing store is unreachable or
// misconfigured. Load returns it alongside an empty snapshot so callers can
// render the failure while the core still operates on empty collections.
var ErrConnection = errors.New("store: connection failed")

// Snapshot is the complete persisted state: the active products and the
// full history ledger. Save overwrites both collections wholesale; the core
// never diffs or appends incrementally.
type Snapshot struct {
	Products []domain.Product
	History  []domain.HistoryEvent
}

// Store is the boundary to the external record store.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
