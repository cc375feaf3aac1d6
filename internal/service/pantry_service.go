// internal/service/pantry_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mercadofacil/backend-go/internal/cache"
	"github.com/mercadofacil/backend-go/internal/cart"
	"github.com/mercadofacil/backend-go/internal/consumption"
	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/planner"
	"github.com/mercadofacil/backend-go/internal/store"
)

var (
	ErrEmptyName       = errors.New("product name is required")
	ErrDuplicateName   = errors.New("a product with this name already exists")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrProductNotFound = errors.New("product not found")
)

// PantryService runs every operation against a snapshot loaded at the start
// and persisted whole at the end, per the store's overwrite contract.
type PantryService struct {
	store store.Store
	cache cache.ShoppingListCache
	clock Clock
}

func NewPantryService(st store.Store, cacheImpl cache.ShoppingListCache, clock Clock) *PantryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopShoppingListCache()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &PantryService{store: st, cache: cacheImpl, clock: clock}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name         string
	Brand        string
	UnitPrice    decimal.Decimal
	MinStock     int
	InitialStock int
}

// Register validates and creates a product, writing its initial AUDIT event
// in the same save so the first audit point always exists.
func (s *PantryService) Register(ctx context.Context, in RegisterInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, ErrEmptyName
	}
	if in.UnitPrice.IsNegative() {
		return domain.Product{}, ErrNegativePrice
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	for _, p := range snap.Products {
		if strings.EqualFold(p.Name, name) {
			return domain.Product{}, ErrDuplicateName
		}
	}

	minStock := in.MinStock
	if minStock < 1 {
		minStock = 1
	}
	initial := in.InitialStock
	if initial < 0 {
		initial = 0
	}

	p := domain.Product{
		ID:           nextID(snap.Products),
		Name:         name,
		Brand:        strings.TrimSpace(in.Brand),
		UnitPrice:    in.UnitPrice,
		CurrentStock: initial,
		MinStock:     minStock,
	}

	snap.Products = append(snap.Products, p)
	snap.History = append(snap.History, domain.HistoryEvent{
		Timestamp: s.clock.Now(),
		ProductID: p.ID,
		Kind:      domain.EventAudit,
		Quantity:  initial,
	})

	if err := s.store.Save(ctx, snap); err != nil {
		return domain.Product{}, err
	}
	s.invalidateCache(ctx)

	log.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product registered")
	return p, nil
}

// Delete removes a product from the active set. Its history rows stay.
func (s *PantryService) Delete(ctx context.Context, productID int64) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	kept := snap.Products[:0]
	found := false
	for _, p := range snap.Products {
		if p.ID == productID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrProductNotFound
	}
	snap.Products = kept

	if err := s.store.Save(ctx, snap); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Products returns the active product set.
func (s *PantryService) Products(ctx context.Context) ([]domain.Product, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// ProductHistory returns a product's ledger, oldest first.
func (s *PantryService) ProductHistory(ctx context.Context, productID int64) ([]domain.HistoryEvent, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var events []domain.HistoryEvent
	for _, ev := range snap.History {
		if ev.ProductID == productID {
			events = append(events, ev)
		}
	}
	return events, nil
}

// ShoppingList runs the estimator and planner over every product and keeps
// the non-zero suggestions, with cost and forecast total at the last
// observed prices.
func (s *PantryService) ShoppingList(ctx context.Context) (domain.ShoppingList, error) {
	if list, ok, err := s.cache.Get(ctx); err == nil && ok {
		return list, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("shopping list: cache get failed")
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return domain.ShoppingList{}, err
	}

	list := domain.ShoppingList{ForecastTotal: decimal.Zero}
	for _, p := range snap.Products {
		rate, hasRate := consumption.Estimate(p.ID, snap.History)
		qty, reason := planner.Plan(p, rate, hasRate)
		if qty == 0 {
			continue
		}
		cost := p.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		list.Items = append(list.Items, domain.Suggestion{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Reason:    reason,
			UnitPrice: p.UnitPrice,
			Cost:      cost,
		})
		list.ForecastTotal = list.ForecastTotal.Add(cost)
	}

	if err := s.cache.Set(ctx, list); err != nil {
		log.Warn().Err(err).Msg("shopping list: cache set failed")
	}

	return list, nil
}

// CheckoutResult reports what a checkout did. Committed == 0 means there was
// nothing to commit: not an error, and the store was left untouched.
type CheckoutResult struct {
	Committed int             `json:"committed"`
	Total     decimal.Decimal `json:"total"`
}

// Checkout folds the cart into the snapshot: each positive-quantity entry
// bumps its product's stock, overwrites the last observed price and appends
// a PURCHASE event. All events of one checkout share a single timestamp
// captured up front. The cart is cleared only after a successful save.
func (s *PantryService) Checkout(ctx context.Context, c *cart.Cart) (CheckoutResult, error) {
	var pending []cart.Entry
	for _, e := range c.Entries() {
		if e.Quantity > 0 {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return CheckoutResult{Total: decimal.Zero}, nil
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}

	now := s.clock.Now()
	committed := 0
	total := decimal.Zero

	for _, e := range pending {
		idx := indexOf(snap.Products, e.ProductID)
		if idx < 0 {
			log.Warn().Int64("product_id", e.ProductID).Msg("checkout: cart entry for unknown product skipped")
			continue
		}
		snap.Products[idx].CurrentStock += e.Quantity
		snap.Products[idx].UnitPrice = e.UnitPrice
		snap.History = append(snap.History, domain.HistoryEvent{
			Timestamp:   now,
			ProductID:   e.ProductID,
			Kind:        domain.EventPurchase,
			Quantity:    e.Quantity,
			PriceAtTime: e.UnitPrice,
		})
		committed++
		total = total.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}

	if committed == 0 {
		return CheckoutResult{Total: decimal.Zero}, nil
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return CheckoutResult{}, err
	}
	c.Clear()
	s.invalidateCache(ctx)

	log.Info().Int("items", committed).Str("total", total.String()).Msg("purchase committed")
	return CheckoutResult{Committed: committed, Total: total}, nil
}

// ApplyAudit records counted stock values. Only counts that differ from the
// current stock mutate anything: the stock is overwritten and an AUDIT event
// appended, all changes sharing one timestamp. Returns whether any product
// changed; repeating the same counts is a no-op.
func (s *PantryService) ApplyAudit(ctx context.Context, counts map[int64]int) (bool, error) {
	if len(counts) == 0 {
		return false, nil
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	changed := false

	for i := range snap.Products {
		counted, ok := counts[snap.Products[i].ID]
		if !ok || counted == snap.Products[i].CurrentStock {
			continue
		}
		if counted < 0 {
			log.Warn().Int64("product_id", snap.Products[i].ID).Int("counted", counted).
				Msg("audit: negative count skipped")
			continue
		}
		snap.Products[i].CurrentStock = counted
		snap.History = append(snap.History, domain.HistoryEvent{
			Timestamp: now,
			ProductID: snap.Products[i].ID,
			Kind:      domain.EventAudit,
			Quantity:  counted,
		})
		changed = true
	}

	if !changed {
		return false, nil
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return false, err
	}
	s.invalidateCache(ctx)
	return true, nil
}

func (s *PantryService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("shopping list: cache invalidate failed")
	}
}

// nextID is always max(existing)+1 (1 when empty). The household's previous
// tool used count+1, which collides after deletions.
func nextID(products []domain.Product) int64 {
	var maxID int64
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

func indexOf(products []domain.Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
