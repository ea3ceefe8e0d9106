// internal/domain/menu/entity.go
package menu

import (
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Segment groups catalog items the way the menu screens list them
type Segment string

const (
	SegmentAll         Segment = ""
	SegmentRecommended Segment = "recommended"
	SegmentMenu        Segment = "menu"
)

// MenuItem represents a dish or drink offered by the canteen
type MenuItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	Reviews     int             `json:"reviews,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Categories  []string        `json:"categories"`
	Image       string          `json:"image"`
	Restaurant  string          `json:"restaurant,omitempty"`
}

// HasCategory checks if the item is listed under category
func (m MenuItem) HasCategory(category string) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CartItem converts the menu item into the snapshot a cart line is created from
func (m MenuItem) CartItem() *cart.Item {
	price := m.Price
	return &cart.Item{
		ID:         m.ID,
		Title:      m.Title,
		Price:      &price,
		Image:      m.Image,
		Restaurant: m.Restaurant,
	}
}

// ExtraOption represents a paid add-on selectable when customising an item
type ExtraOption struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}
