package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/store"
)

func TestLoadEmpty(t *testing.T) {
	s := New()
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.History)
}

func TestSaveOverwritesWholeSnapshot(t *testing.T) {
	s := New()
	require.NoError(t, s.Save(context.Background(), store.Snapshot{
		Products: []domain.Product{{ID: 1, Name: "Arroz 5kg"}, {ID: 2, Name: "Feijão 1kg"}},
	}))
	require.NoError(t, s.Save(context.Background(), store.Snapshot{
		Products: []domain.Product{{ID: 2, Name: "Feijão 1kg"}},
	}))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(2), snap.Products[0].ID)
}

func TestLoadedSnapshotDoesNotAliasStore(t *testing.T) {
	s := New()
	require.NoError(t, s.Save(context.Background(), store.Snapshot{
		Products: []domain.Product{{ID: 1, Name: "Arroz 5kg", CurrentStock: 3}},
	}))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	snap.Products[0].CurrentStock = 99

	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, again.Products[0].CurrentStock)
}
