package order

import "github.com/shopspring/decimal"

// effectiveQuantity counts a missing quantity as a single unit
func (i Item) effectiveQuantity() int64 {
	if i.Quantity <= 0 {
		return 1
	}
	return int64(i.Quantity)
}

// ItemsSubtotal sums price times quantity over the order's items
func (o *Order) ItemsSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	if o == nil {
		return subtotal
	}
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(item.effectiveQuantity())))
	}
	return subtotal
}

// CurrentOrderTotal is the amount due for the in-flight order.
// No order, or an order without items, totals zero.
func CurrentOrderTotal(o *Order) decimal.Decimal {
	if o == nil || len(o.Items) == 0 {
		return decimal.Zero
	}
	return o.ItemsSubtotal().
		Add(o.DeliveryFee).
		Add(o.PlatformFee).
		Add(o.Tip)
}
