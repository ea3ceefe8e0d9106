// internal/infrastructure/database/postgres/order_provider.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	displayTimeLayout = "Jan 02, 3:04 PM"
	ticketAttempts    = 3
)

// OrderProvider serves order data from the database
type OrderProvider struct {
	db           *gorm.DB
	historyLimit int
	location     *time.Location
	now          func() time.Time
	ticket       func() int
}

// NewOrderProvider creates a database-backed order provider.
// Times are displayed in loc.
func NewOrderProvider(db *gorm.DB, historyLimit int, loc *time.Location) *OrderProvider {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OrderProvider{
		db:           db,
		historyLimit: historyLimit,
		location:     loc,
		now:          time.Now,
		ticket:       order.RandomTicketNumber,
	}
}

// FetchCurrentOrder returns the newest order that has not been picked up
func (p *OrderProvider) FetchCurrentOrder(ctx context.Context) (*order.Order, error) {
	var rec OrderRecord
	err := p.db.WithContext(ctx).
		Preload("Items", orderByPosition).
		Preload("Steps", orderByPosition).
		Where("status IN ?", activeStatuses).
		Order("placed_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current order: %w", err)
	}

	return p.toOrder(rec), nil
}

// FetchOrderHistory returns finished orders, newest first
func (p *OrderProvider) FetchOrderHistory(ctx context.Context) ([]order.PastOrder, error) {
	var recs []OrderRecord
	err := p.db.WithContext(ctx).
		Preload("Items", orderByPosition).
		Where("status NOT IN ?", activeStatuses).
		Order("placed_at DESC").
		Limit(p.historyLimit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}

	history := make([]order.PastOrder, 0, len(recs))
	for _, rec := range recs {
		history = append(history, p.toPastOrder(rec))
	}
	return history, nil
}

// CreateSupportTicket records a support request against an existing order
func (p *OrderProvider) CreateSupportTicket(ctx context.Context, orderID string) (*order.SupportTicket, error) {
	if orderID == "" {
		return nil, order.ErrMissingOrderReference
	}

	db := p.db.WithContext(ctx)

	var count int64
	if err := db.Model(&OrderRecord{}).Where("reference = ?", orderID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, orderID)
	}

	var lastErr error
	for attempt := 0; attempt < ticketAttempts; attempt++ {
		rec := SupportTicketRecord{
			TicketID:       order.SupportTicketID(p.ticket()),
			OrderReference: orderID,
			Status:         order.SupportTicketOpen,
			SubmittedAt:    p.now().UTC(),
		}

		// Ticket numbers are short, so a collision just draws another one
		var taken int64
		if err := db.Model(&SupportTicketRecord{}).Where("ticket_id = ?", rec.TicketID).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("failed to check ticket id: %w", err)
		}
		if taken > 0 {
			lastErr = fmt.Errorf("ticket id %s already issued", rec.TicketID)
			continue
		}

		if err := db.Create(&rec).Error; err != nil {
			lastErr = err
			continue
		}

		return &order.SupportTicket{
			OrderID:     rec.OrderReference,
			TicketID:    rec.TicketID,
			SubmittedAt: rec.SubmittedAt,
			Status:      rec.Status,
		}, nil
	}

	return nil, fmt.Errorf("failed to create support ticket: %w", lastErr)
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (p *OrderProvider) toOrder(rec OrderRecord) *order.Order {
	o := &order.Order{
		ID:           rec.Reference,
		Restaurant:   rec.Restaurant,
		PlacedAt:     rec.PlacedAt.In(p.location).Format(displayTimeLayout),
		EtaMinutes:   rec.EtaMinutes,
		PickupSpot:   rec.PickupSpot,
		Instructions: rec.Instructions,
		Items:        make([]order.Item, 0, len(rec.Items)),
		DeliveryFee:  rec.DeliveryFee,
		PlatformFee:  rec.PlatformFee,
		Tip:          rec.Tip,
		StatusSteps:  make([]order.StatusStep, 0, len(rec.Steps)),
	}
	for _, item := range rec.Items {
		o.Items = append(o.Items, order.Item{Name: item.Name, Price: item.Price, Quantity: item.Quantity})
	}
	for _, step := range rec.Steps {
		o.StatusSteps = append(o.StatusSteps, order.StatusStep{
			Label: step.Label,
			Time:  step.StepTime,
			State: order.StepState(step.State),
		})
	}
	return o
}

func (p *OrderProvider) toPastOrder(rec OrderRecord) order.PastOrder {
	past := order.PastOrder{
		ID:         rec.Reference,
		Restaurant: rec.Restaurant,
		Date:       rec.PlacedAt.In(p.location).Format(displayTimeLayout),
		Summary:    rec.Summary,
		Status:     cases.Title(language.English).String(rec.Status),
		Total:      rec.Total,
		Rating:     rec.Rating,
		ImageURI:   rec.ImageURI,
	}

	if len(rec.Items) > 0 {
		o := p.toOrder(rec)
		if past.Summary == "" {
			past.Summary = summarize(o.Items)
		}
		if past.Total.IsZero() {
			past.Total = order.CurrentOrderTotal(o)
		}
	}
	return past
}

func summarize(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		parts = append(parts, fmt.Sprintf("%dx %s", qty, item.Name))
	}
	return strings.Join(parts, ", ")
}
