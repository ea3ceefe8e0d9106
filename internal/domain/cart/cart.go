package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cart holds the deduplicated line items of one owner and their derived totals.
// A Cart is not safe for concurrent use; Service serializes access per owner.
type Cart struct {
	items  []LineItem
	totals Totals
}

// New creates an empty cart
func New() *Cart {
	c := &Cart{}
	c.recalculate()
	return c
}

// FromItems rebuilds a cart from stored line items, merging any lines that share a variant key
func FromItems(items []LineItem) *Cart {
	c := &Cart{items: make([]LineItem, 0, len(items))}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i := c.indexOf(item.VariantKey); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		item.Extras = append([]Extra(nil), item.Extras...)
		c.items = append(c.items, item)
	}
	c.recalculate()
	return c
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	for i, item := range c.items {
		item.Extras = append([]Extra(nil), item.Extras...)
		items[i] = item
	}
	return items
}

// Line returns the line item with the given variant key
func (c *Cart) Line(variantKey string) (LineItem, bool) {
	i := c.indexOf(variantKey)
	if i < 0 {
		return LineItem{}, false
	}
	item := c.items[i]
	item.Extras = append([]Extra(nil), item.Extras...)
	return item, true
}

// AddItem adds a configuration to the cart or increments the matching line.
// It reports false and leaves the cart untouched when the request carries no usable item.
func (c *Cart) AddItem(req AddItemRequest) (LineItem, bool) {
	if req.Item == nil || itemIdentity(req.Item) == "" {
		return LineItem{}, false
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return LineItem{}, false
	}

	extras := NormalizeExtras(req.Extras)
	variantKey := VariantKey(req.Item, extras, req.Notes)

	if i := c.indexOf(variantKey); i >= 0 {
		// Extras, base price and notes belong to the original line
		c.items[i].Quantity += quantity
		c.recalculate()
		return c.Line(variantKey)
	}

	basePrice := decimal.Zero
	if req.Item.Price != nil {
		basePrice = *req.Item.Price
	}

	line := LineItem{
		VariantKey:  variantKey,
		ItemID:      req.Item.ID,
		Title:       req.Item.Title,
		Image:       req.Item.Image,
		Restaurant:  req.Item.Restaurant,
		BasePrice:   basePrice,
		Extras:      extras,
		ExtrasTotal: sumExtras(extras),
		Notes:       strings.TrimSpace(req.Notes),
		Quantity:    quantity,
	}
	c.items = append(c.items, line)
	c.recalculate()

	return c.Line(variantKey)
}

// UpdateItemQuantity sets the quantity of a line, clamped at zero.
// Lines left at zero are removed. It reports false when no line matches.
func (c *Cart) UpdateItemQuantity(variantKey string, quantity int) bool {
	i := c.indexOf(variantKey)
	if i < 0 {
		return false
	}

	c.items[i].Quantity = max(0, quantity)

	kept := c.items[:0]
	for _, item := range c.items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.recalculate()

	return true
}

// RemoveItem drops the line with the given variant key
func (c *Cart) RemoveItem(variantKey string) bool {
	i := c.indexOf(variantKey)
	if i < 0 {
		return false
	}

	c.items = append(c.items[:i], c.items[i+1:]...)
	c.recalculate()

	return true
}

// EditItem removes a line and returns a single-unit copy of its configuration
// so the caller can re-customise and add it again.
func (c *Cart) EditItem(variantKey string) (AddItemRequest, bool) {
	line, ok := c.Line(variantKey)
	if !ok {
		return AddItemRequest{}, false
	}
	c.RemoveItem(variantKey)

	req := requestFromLine(line)
	req.Quantity = 1
	return req, true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = nil
	c.recalculate()
}

// IsEmpty reports whether the cart holds no line items
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal returns the sum of (base price + extras) x quantity over all lines
func (c *Cart) Subtotal() decimal.Decimal {
	return c.totals.Subtotal
}

// TotalItems returns the sum of quantities over all lines
func (c *Cart) TotalItems() int {
	return c.totals.TotalItems
}

// Totals returns the derived totals
func (c *Cart) Totals() Totals {
	return c.totals
}

func (c *Cart) indexOf(variantKey string) int {
	for i := range c.items {
		if c.items[i].VariantKey == variantKey {
			return i
		}
	}
	return -1
}

// recalculate must run after every mutation
func (c *Cart) recalculate() {
	totals := Totals{
		LineCount: len(c.items),
		Subtotal:  decimal.Zero,
	}
	for _, item := range c.items {
		totals.TotalItems += item.Quantity
		totals.Subtotal = totals.Subtotal.Add(item.LineTotal())
	}
	c.totals = totals
}
