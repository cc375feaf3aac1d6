package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadofacil/backend-go/internal/cart"
	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/store"
	"github.com/mercadofacil/backend-go/internal/store/memory"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

var checkoutTime = time.Date(2025, 3, 15, 9, 30, 0, 0, time.Local)

func newTestService(t *testing.T, snap store.Snapshot) (*PantryService, *memory.Store, *fakeClock) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.Save(context.Background(), snap))
	clock := &fakeClock{t: checkoutTime}
	return NewPantryService(st, nil, clock), st, clock
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegisterAssignsIDAndInitialAudit(t *testing.T) {
	svc, st, clock := newTestService(t, store.Snapshot{})

	p, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Arroz 5kg",
		Brand:        "Tio João",
		UnitPrice:    price("24.90"),
		MinStock:     2,
		InitialStock: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, 3, p.CurrentStock)
	assert.Equal(t, 2, p.MinStock)

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	assert.Equal(t, domain.EventAudit, snap.History[0].Kind)
	assert.Equal(t, 3, snap.History[0].Quantity)
	assert.Equal(t, clock.t, snap.History[0].Timestamp)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{{ID: 1, Name: "Arroz 5kg", MinStock: 1}},
	})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "ARROZ 5KG"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Feijão", UnitPrice: price("-1")})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestRegisterIDNeverReusedAfterDeletion(t *testing.T) {
	svc, _, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{
			{ID: 1, Name: "Arroz 5kg", MinStock: 1},
			{ID: 2, Name: "Feijão 1kg", MinStock: 1},
		},
	})

	require.NoError(t, svc.Delete(context.Background(), 1))

	p, err := svc.Register(context.Background(), RegisterInput{Name: "Leite 1L"})
	require.NoError(t, err)
	// max(existing)+1, not count+1 (which would collide with product 2)
	assert.Equal(t, int64(3), p.ID)
}

func TestDeleteKeepsHistory(t *testing.T) {
	svc, st, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{{ID: 1, Name: "Arroz 5kg", MinStock: 1}},
		History: []domain.HistoryEvent{
			{Timestamp: checkoutTime, ProductID: 1, Kind: domain.EventAudit, Quantity: 2},
		},
	})

	require.NoError(t, svc.Delete(context.Background(), 1))

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
	assert.Len(t, snap.History, 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrProductNotFound)
}

func TestCheckout(t *testing.T) {
	svc, st, clock := newTestService(t, store.Snapshot{
		Products: []domain.Product{
			{ID: 7, Name: "Leite 1L", UnitPrice: price("4.00"), CurrentStock: 3, MinStock: 6},
			{ID: 8, Name: "Café 500g", UnitPrice: price("18.00"), CurrentStock: 1, MinStock: 1},
		},
	})

	c := cart.New()
	c.Put(cart.Entry{ProductID: 7, Quantity: 2, UnitPrice: price("5.50")})
	c.Put(cart.Entry{ProductID: 8, Quantity: 1, UnitPrice: price("17.00")})

	result, err := svc.Checkout(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Committed)
	assert.True(t, result.Total.Equal(price("28.00")))
	assert.Equal(t, 0, c.Len(), "cart is cleared after a successful checkout")

	snap, err := st.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Products[0].CurrentStock)
	assert.True(t, snap.Products[0].UnitPrice.Equal(price("5.50")))
	assert.Equal(t, 2, snap.Products[1].CurrentStock)

	require.Len(t, snap.History, 2)
	for _, ev := range snap.History {
		assert.Equal(t, domain.EventPurchase, ev.Kind)
		// all events of one checkout share the timestamp captured up front
		assert.Equal(t, clock.t, ev.Timestamp)
	}
	assert.Equal(t, 2, snap.History[0].Quantity)
	assert.True(t, snap.History[0].PriceAtTime.Equal(price("5.50")))
}

func TestCheckoutNothingToCommit(t *testing.T) {
	seed := store.Snapshot{
		Products: []domain.Product{{ID: 7, Name: "Leite 1L", UnitPrice: price("4.00"), CurrentStock: 3, MinStock: 6}},
	}
	svc, st, _ := newTestService(t, seed)

	c := cart.New()
	c.Put(cart.Entry{ProductID: 7, Quantity: 0, UnitPrice: price("5.50")})

	result, err := svc.Checkout(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Committed)
	assert.Equal(t, 1, c.Len(), "cart is kept on a no-op checkout")

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Products[0].CurrentStock)
	assert.Empty(t, snap.History)
}

func TestCheckoutSkipsUnknownProduct(t *testing.T) {
	svc, st, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{{ID: 1, Name: "Arroz 5kg", UnitPrice: price("24.90"), CurrentStock: 1, MinStock: 1}},
	})

	c := cart.New()
	c.Put(cart.Entry{ProductID: 99, Quantity: 2, UnitPrice: price("1.00")})
	c.Put(cart.Entry{ProductID: 1, Quantity: 1, UnitPrice: price("24.90")})

	result, err := svc.Checkout(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Committed)

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	assert.Equal(t, int64(1), snap.History[0].ProductID)
}

func TestApplyAuditIdempotent(t *testing.T) {
	svc, st, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{
			{ID: 1, Name: "Arroz 5kg", CurrentStock: 5, MinStock: 1},
			{ID: 2, Name: "Feijão 1kg", CurrentStock: 2, MinStock: 1},
		},
	})

	counts := map[int64]int{1: 3, 2: 2} // product 2 already matches

	changed, err := svc.ApplyAudit(context.Background(), counts)
	require.NoError(t, err)
	assert.True(t, changed)

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Products[0].CurrentStock)
	require.Len(t, snap.History, 1, "only the differing count produces an event")
	assert.Equal(t, domain.EventAudit, snap.History[0].Kind)
	assert.Equal(t, 3, snap.History[0].Quantity)

	// same counts again: nothing changes, no new event
	changed, err = svc.ApplyAudit(context.Background(), counts)
	require.NoError(t, err)
	assert.False(t, changed)

	snap, err = st.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.History, 1)
}

func TestShoppingList(t *testing.T) {
	t0 := checkoutTime.AddDate(0, 0, -10)
	svc, _, _ := newTestService(t, store.Snapshot{
		Products: []domain.Product{
			// two audits + purchase: rate 36.0, need 31
			{ID: 1, Name: "Leite 1L", UnitPrice: price("4.00"), CurrentStock: 5, MinStock: 2},
			// no rate, below minimum: need 3
			{ID: 2, Name: "Café 500g", UnitPrice: price("18.00"), CurrentStock: 1, MinStock: 4},
			// fully stocked: no suggestion
			{ID: 3, Name: "Sal 1kg", UnitPrice: price("3.00"), CurrentStock: 9, MinStock: 1},
		},
		History: []domain.HistoryEvent{
			{Timestamp: t0, ProductID: 1, Kind: domain.EventAudit, Quantity: 10},
			{Timestamp: t0.AddDate(0, 0, 5), ProductID: 1, Kind: domain.EventPurchase, Quantity: 6, PriceAtTime: price("4.00")},
			{Timestamp: t0.AddDate(0, 0, 10), ProductID: 1, Kind: domain.EventAudit, Quantity: 4},
			{Timestamp: t0, ProductID: 2, Kind: domain.EventAudit, Quantity: 1},
		},
	})

	list, err := svc.ShoppingList(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	assert.Equal(t, int64(1), list.Items[0].ProductID)
	assert.Equal(t, 31, list.Items[0].Quantity)
	assert.Equal(t, "consumption-based, rate=36.0/month", list.Items[0].Reason)
	assert.True(t, list.Items[0].Cost.Equal(price("124.00")))

	assert.Equal(t, int64(2), list.Items[1].ProductID)
	assert.Equal(t, 3, list.Items[1].Quantity)
	assert.Equal(t, "below minimum stock", list.Items[1].Reason)
	assert.True(t, list.Items[1].Cost.Equal(price("54.00")))

	assert.True(t, list.ForecastTotal.Equal(price("178.00")))
}

func TestShoppingListEmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t, store.Snapshot{})

	list, err := svc.ShoppingList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.True(t, list.ForecastTotal.IsZero())
}
