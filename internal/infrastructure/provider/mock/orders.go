// internal/infrastructure/provider/mock/orders.go
package mock

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
)

//go:embed orders_data.json
var ordersData []byte

type dataset struct {
	CurrentOrder *order.Order      `json:"currentOrder"`
	PastOrders   []order.PastOrder `json:"pastOrders"`
}

// Delays simulates network latency per call
type Delays struct {
	Current time.Duration
	History time.Duration
	Support time.Duration
}

// OrderProvider serves a fixed order data set after a simulated delay
type OrderProvider struct {
	data   dataset
	delays Delays
	now    func() time.Time
	ticket func() int
}

// NewOrderProvider creates a provider over the bundled data set
func NewOrderProvider(delays Delays) (*OrderProvider, error) {
	var data dataset
	if err := json.Unmarshal(ordersData, &data); err != nil {
		return nil, fmt.Errorf("failed to decode mock orders: %w", err)
	}
	return &OrderProvider{
		data:   data,
		delays: delays,
		now:    time.Now,
		ticket: order.RandomTicketNumber,
	}, nil
}

// Dataset returns copies of the bundled orders, used to seed a database
func (p *OrderProvider) Dataset() (*order.Order, []order.PastOrder) {
	return p.data.CurrentOrder.Clone(), append([]order.PastOrder(nil), p.data.PastOrders...)
}

func (p *OrderProvider) FetchCurrentOrder(ctx context.Context) (*order.Order, error) {
	if err := sleep(ctx, p.delays.Current); err != nil {
		return nil, err
	}
	return p.data.CurrentOrder.Clone(), nil
}

func (p *OrderProvider) FetchOrderHistory(ctx context.Context) ([]order.PastOrder, error) {
	if err := sleep(ctx, p.delays.History); err != nil {
		return nil, err
	}
	return append([]order.PastOrder{}, p.data.PastOrders...), nil
}

func (p *OrderProvider) CreateSupportTicket(ctx context.Context, orderID string) (*order.SupportTicket, error) {
	if err := sleep(ctx, p.delays.Support); err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, order.ErrMissingOrderReference
	}
	return &order.SupportTicket{
		OrderID:     orderID,
		TicketID:    order.SupportTicketID(p.ticket()),
		SubmittedAt: p.now().UTC(),
		Status:      order.SupportTicketOpen,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
