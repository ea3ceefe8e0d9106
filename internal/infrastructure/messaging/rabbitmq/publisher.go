// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	CartCheckedOutRoutingKey = "cart.checkedout.v1"
	cartCheckedOutType       = "CartCheckedOut"
	currencyPHP              = "PHP"
)

// CartCheckedOut is the message published for a checked-out cart
type CartCheckedOut struct {
	EventID      string           `json:"eventId"`
	EventType    string           `json:"eventType"`
	EventVersion int              `json:"eventVersion"`
	CheckoutID   string           `json:"checkoutId"`
	Owner        string           `json:"owner"`
	Items        []CheckedOutItem `json:"items"`
	TotalItems   int              `json:"totalItems"`
	Subtotal     string           `json:"subtotal"`
	Currency     string           `json:"currency"`
	PickupOption string           `json:"pickupOption"`
	PickupSlot   string           `json:"pickupSlot,omitempty"`
	PickupAt     time.Time        `json:"pickupAt"`
	Timestamp    time.Time        `json:"timestamp"`
}

// CheckedOutItem is one cart line in a CartCheckedOut message
type CheckedOutItem struct {
	VariantKey string   `json:"variantKey"`
	ItemID     string   `json:"itemId"`
	Title      string   `json:"title"`
	Extras     []string `json:"extras,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	Quantity   int      `json:"quantity"`
	UnitPrice  string   `json:"unitPrice"`
	LineTotal  string   `json:"lineTotal"`
}

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends cart events to a topic exchange
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	exchange string
	timeout  time.Duration
}

// Dial connects to RabbitMQ
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// NewPublisher opens a channel and declares the events exchange
func NewPublisher(conn *amqp.Connection, exchange string, timeout time.Duration) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return newPublisher(ch, exchange, timeout), nil
}

func newPublisher(ch channel, exchange string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Publisher{ch: ch, exchange: exchange, timeout: timeout}
}

// Close closes the channel
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishCartCheckedOut implements cart.CheckoutPublisher
func (p *Publisher) PublishCartCheckedOut(ctx context.Context, event cart.CheckedOutEvent) error {
	body, err := json.Marshal(NewCartCheckedOut(event))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", cartCheckedOutType, err)
	}
	return p.publishJSON(ctx, CartCheckedOutRoutingKey, event.CheckoutID, body)
}

// NewCartCheckedOut converts a domain event into its wire message
func NewCartCheckedOut(event cart.CheckedOutEvent) CartCheckedOut {
	msg := CartCheckedOut{
		EventID:      uuid.NewString(),
		EventType:    cartCheckedOutType,
		EventVersion: 1,
		CheckoutID:   event.CheckoutID,
		Owner:        event.Owner,
		Items:        make([]CheckedOutItem, 0, len(event.Items)),
		TotalItems:   event.Totals.TotalItems,
		Subtotal:     event.Totals.Subtotal.StringFixed(2),
		Currency:     currencyPHP,
		PickupOption: string(event.Pickup.Option),
		PickupAt:     event.Pickup.At.UTC(),
		Timestamp:    event.OccurredAt.UTC(),
	}
	if event.Pickup.Slot != nil {
		msg.PickupSlot = event.Pickup.Slot.Key
	}

	for _, line := range event.Items {
		item := CheckedOutItem{
			VariantKey: line.VariantKey,
			ItemID:     line.ItemID,
			Title:      line.Title,
			Notes:      line.Notes,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice().StringFixed(2),
			LineTotal:  line.LineTotal().StringFixed(2),
		}
		for _, extra := range line.Extras {
			item.Extras = append(item.Extras, extra.Key)
		}
		msg.Items = append(msg.Items, item)
	}

	return msg
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
