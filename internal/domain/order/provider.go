package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

// SupportTicketOpen is the status of a newly created ticket
const SupportTicketOpen = "open"

var (
	ErrMissingOrderReference = errors.New("missing order reference")
	ErrOrderNotFound         = errors.New("order not found")
	ErrClosed                = errors.New("order viewmodel closed")
)

// Provider is the source of order data; mock and database-backed
// implementations are interchangeable.
type Provider interface {
	// FetchCurrentOrder returns the in-flight order, or nil when there is none
	FetchCurrentOrder(ctx context.Context) (*Order, error)
	FetchOrderHistory(ctx context.Context) ([]PastOrder, error)
	// CreateSupportTicket fails with ErrMissingOrderReference when orderID is empty
	CreateSupportTicket(ctx context.Context, orderID string) (*SupportTicket, error)
}

// RandomTicketNumber draws a four-digit support ticket number
func RandomTicketNumber() int {
	return 1000 + rand.Intn(9000)
}

// SupportTicketID formats a ticket number the way customers see it
func SupportTicketID(n int) string {
	return fmt.Sprintf("SUP-%d", n)
}
