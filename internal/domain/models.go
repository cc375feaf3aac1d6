package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the second-precision, local-naive timestamp format used by
// the backing store ("Data" column).
const TimeLayout = "2006-01-02 15:04:05"

// EventKind distinguishes the two entries of the history ledger.
type EventKind string

const (
	// EventAudit records an observed absolute stock count.
	EventAudit EventKind = "AUDIT"
	// EventPurchase records units added to stock at a price.
	EventPurchase EventKind = "PURCHASE"
)

// Product is a pantry item being tracked.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"produto"`
	Brand        string          `json:"brand" db:"marca"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"preco"`
	CurrentStock int             `json:"current_stock" db:"estoque_atual"`
	MinStock     int             `json:"min_stock" db:"estoque_minimo"`
}

// HistoryEvent is one row of a product's append-only ledger. Events are
// never mutated; manual stock corrections land as new AUDIT events.
type HistoryEvent struct {
	Timestamp   time.Time       `json:"timestamp" db:"data"`
	ProductID   int64           `json:"product_id" db:"produto_id"`
	Kind        EventKind       `json:"kind" db:"tipo"`
	Quantity    int             `json:"quantity" db:"qtd"`
	PriceAtTime decimal.Decimal `json:"price_at_time" db:"preco_na_epoca"`
}

// Suggestion is the planner's recommendation for a single product.
type Suggestion struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Reason    string          `json:"reason"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Cost      decimal.Decimal `json:"cost"`
}

// ShoppingList aggregates all non-zero suggestions plus the forecast spend.
type ShoppingList struct {
	Items         []Suggestion    `json:"items"`
	ForecastTotal decimal.Decimal `json:"forecast_total"`
}
