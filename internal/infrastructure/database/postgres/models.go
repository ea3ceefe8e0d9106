// internal/infrastructure/database/postgres/models.go
package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses stored in the orders table
const (
	StatusPlaced    = "placed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// activeStatuses are the statuses of an order that has not been picked up yet
var activeStatuses = []string{StatusPlaced, StatusPreparing, StatusReady}

// OrderRecord is the persisted form of an order
type OrderRecord struct {
	ID           uint            `gorm:"primaryKey"`
	Reference    string          `gorm:"uniqueIndex;not null;size:32"`
	Restaurant   string          `gorm:"not null;size:120"`
	Status       string          `gorm:"not null;size:20;index"`
	PlacedAt     time.Time       `gorm:"not null;index"`
	EtaMinutes   int             `gorm:"default:0"`
	PickupSpot   string          `gorm:"size:120"`
	Instructions string          `gorm:"type:text"`
	Summary      string          `gorm:"size:255"`
	Rating       float64         `gorm:"default:0"`
	ImageURI     string          `gorm:"size:500"`
	DeliveryFee  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PlatformFee  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Tip          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	// Total is stored for finished orders whose items were not kept
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []OrderItemRecord  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Steps []StatusStepRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord is one purchased item of an order
type OrderItemRecord struct {
	ID       uint            `gorm:"primaryKey"`
	OrderID  uint            `gorm:"not null;index"`
	Position int             `gorm:"not null;default:0"`
	Name     string          `gorm:"not null;size:120"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity int             `gorm:"not null;default:1"`
}

func (OrderItemRecord) TableName() string { return "order_items" }

// StatusStepRecord is one entry of an order's pickup timeline
type StatusStepRecord struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"not null;index"`
	Position int    `gorm:"not null;default:0"`
	Label    string `gorm:"not null;size:60"`
	StepTime string `gorm:"size:20"`
	State    string `gorm:"not null;size:20"`
}

func (StatusStepRecord) TableName() string { return "order_status_steps" }

// SupportTicketRecord is a persisted support request
type SupportTicketRecord struct {
	ID             uint      `gorm:"primaryKey"`
	TicketID       string    `gorm:"uniqueIndex;not null;size:20"`
	OrderReference string    `gorm:"not null;size:32;index"`
	Status         string    `gorm:"not null;size:20"`
	SubmittedAt    time.Time `gorm:"not null"`
}

func (SupportTicketRecord) TableName() string { return "support_tickets" }
