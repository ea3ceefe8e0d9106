package cart

import (
	"context"
	"time"
)

// CheckedOutEvent is emitted when a cart passes checkout
type CheckedOutEvent struct {
	CheckoutID string       `json:"checkout_id"`
	Owner      string       `json:"owner"`
	Items      []LineItem   `json:"items"`
	Totals     Totals       `json:"totals"`
	Pickup     PickupChoice `json:"pickup"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// CheckoutPublisher hands checked-out carts to downstream consumers
type CheckoutPublisher interface {
	PublishCartCheckedOut(ctx context.Context, event CheckedOutEvent) error
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) PublishCartCheckedOut(context.Context, CheckedOutEvent) error { return nil }
