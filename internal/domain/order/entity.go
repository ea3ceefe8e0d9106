// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// StepState represents the progress of a single pickup status step
type StepState string

const (
	StepPending   StepState = "pending"
	StepCurrent   StepState = "current"
	StepCompleted StepState = "completed"
)

// StatusStep is one entry of the pickup status timeline
type StatusStep struct {
	Label string    `json:"label"`
	Time  string    `json:"time"`
	State StepState `json:"state"`
}

// Item represents a purchased item as shown on the order screens
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Order represents the in-flight order
type Order struct {
	ID           string          `json:"id"`
	Restaurant   string          `json:"restaurant"`
	PlacedAt     string          `json:"placedAt"`
	EtaMinutes   int             `json:"etaMinutes"`
	PickupSpot   string          `json:"pickupSpot"`
	Instructions string          `json:"instructions,omitempty"`
	Items        []Item          `json:"items"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	PlatformFee  decimal.Decimal `json:"platformFee"`
	Tip          decimal.Decimal `json:"tip"`
	StatusSteps  []StatusStep    `json:"statusSteps"`
}

// PastOrder is a summary of a finished order
type PastOrder struct {
	ID         string          `json:"id"`
	Restaurant string          `json:"restaurant"`
	Date       string          `json:"date"`
	Summary    string          `json:"summary"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Rating     float64         `json:"rating"`
	ImageURI   string          `json:"imageUri,omitempty"`
}

// SupportTicket is returned when support is contacted about an order
type SupportTicket struct {
	OrderID     string    `json:"orderId"`
	TicketID    string    `json:"ticketId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
}

// State is a point-in-time view of the order screens' data
type State struct {
	CurrentOrder      *Order          `json:"currentOrder"`
	PastOrders        []PastOrder     `json:"pastOrders"`
	LoadingCurrent    bool            `json:"loadingCurrent"`
	LoadingHistory    bool            `json:"loadingHistory"`
	Error             string          `json:"error,omitempty"`
	CurrentError      string          `json:"currentError,omitempty"`
	HistoryError      string          `json:"historyError,omitempty"`
	CurrentOrderTotal decimal.Decimal `json:"currentOrderTotal"`
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	cp.StatusSteps = append([]StatusStep(nil), o.StatusSteps...)
	return &cp
}

// CurrentStep returns the timeline step currently in progress
func (o *Order) CurrentStep() (StatusStep, bool) {
	if o == nil {
		return StatusStep{}, false
	}
	for _, step := range o.StatusSteps {
		if step.State == StepCurrent {
			return step, true
		}
	}
	return StatusStep{}, false
}
