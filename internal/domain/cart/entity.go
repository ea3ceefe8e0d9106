// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the menu item a line item is created from
type Item struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Image      string           `json:"image,omitempty"`
	Restaurant string           `json:"restaurant,omitempty"`
}

// ExtraInput is an add-on as it arrives from the caller; Price may be missing
type ExtraInput struct {
	Key   string           `json:"key"`
	Label string           `json:"label"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Extra is a normalized add-on attached to a line item
type Extra struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// LineItem is one distinct purchasable configuration and its quantity
type LineItem struct {
	VariantKey  string          `json:"variant_key"`
	ItemID      string          `json:"item_id"`
	Title       string          `json:"title"`
	Image       string          `json:"image,omitempty"`
	Restaurant  string          `json:"restaurant,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Extras      []Extra         `json:"extras"`
	ExtrasTotal decimal.Decimal `json:"extras_total"`
	Notes       string          `json:"notes"`
	Quantity    int             `json:"quantity"`
}

// UnitPrice returns base price plus extras for a single unit
func (l LineItem) UnitPrice() decimal.Decimal {
	return l.BasePrice.Add(l.ExtrasTotal)
}

// LineTotal returns the unit price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AddItemRequest carries the arguments of Cart.AddItem.
// A zero Quantity means one.
type AddItemRequest struct {
	Item     *Item        `json:"item"`
	Extras   []ExtraInput `json:"extras,omitempty"`
	Notes    string       `json:"notes,omitempty"`
	Quantity int          `json:"quantity,omitempty"`
}

// Totals represents derived cart totals
type Totals struct {
	LineCount  int             `json:"line_count"`  // Number of distinct line items
	TotalItems int             `json:"total_items"` // Sum of all quantities
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Snapshot is the serialized form of a cart kept by a Store
type Snapshot struct {
	Owner     string     `json:"owner"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartResponse represents a cart with its derived totals
type CartResponse struct {
	Owner     string     `json:"owner,omitempty"`
	Items     []LineItem `json:"items"`
	Totals    Totals     `json:"totals"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
