package cart

import "github.com/shopspring/decimal"

// Entry is a pending purchase for one product.
type Entry struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Cart holds at most one pending entry per product. Re-adding a product
// replaces its quantity and price in place; quantities are never summed
// across repeated edits. Zero-quantity entries may sit in the cart while
// being edited and are skipped at checkout.
type Cart struct {
	order   []int64
	entries map[int64]Entry
}

func New() *Cart {
	return &Cart{entries: make(map[int64]Entry)}
}

// Put adds or updates the entry for the given product.
func (c *Cart) Put(e Entry) {
	if _, ok := c.entries[e.ProductID]; !ok {
		c.order = append(c.order, e.ProductID)
	}
	c.entries[e.ProductID] = e
}

// Remove drops the entry for the given product, reporting whether one existed.
func (c *Cart) Remove(productID int64) bool {
	if _, ok := c.entries[productID]; !ok {
		return false
	}
	delete(c.entries, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Entries lists pending entries in first-added order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Total is the running sum of quantity x unit price over all entries.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.order = nil
	c.entries = make(map[int64]Entry)
}
