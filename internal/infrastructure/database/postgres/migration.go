// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migration{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// Parents before children
	models := []interface{}{
		&OrderRecord{},
		&OrderItemRecord{},
		&StatusStepRecord{},
		&SupportTicketRecord{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the order screens' queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_status_placed ON orders(status, placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_position ON order_items(order_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_steps_order_position ON order_status_steps(order_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_support_tickets_submitted ON support_tickets(submitted_at DESC)",
	}

	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failCount++
		}
	}

	m.logger.Infof("Created %d indexes (%d failed)", len(indexes)-failCount, failCount)
	return nil
}

// SeedOrders loads a starting data set into an empty orders table.
// Past orders are spread over the preceding days, newest first.
func (m *Migration) SeedOrders(current *order.Order, past []order.PastOrder) error {
	var count int64
	if err := m.db.Model(&OrderRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}
	if count > 0 {
		m.logger.WithField("orders", count).Debug("Orders already present, skipping seed")
		return nil
	}

	now := m.now().UTC()
	records := make([]OrderRecord, 0, len(past)+1)

	if current != nil {
		rec := OrderRecord{
			Reference:    current.ID,
			Restaurant:   current.Restaurant,
			Status:       StatusPreparing,
			PlacedAt:     now.Add(-5 * time.Minute),
			EtaMinutes:   current.EtaMinutes,
			PickupSpot:   current.PickupSpot,
			Instructions: current.Instructions,
			DeliveryFee:  current.DeliveryFee,
			PlatformFee:  current.PlatformFee,
			Tip:          current.Tip,
		}
		for i, item := range current.Items {
			rec.Items = append(rec.Items, OrderItemRecord{
				Position: i,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}
		for i, step := range current.StatusSteps {
			rec.Steps = append(rec.Steps, StatusStepRecord{
				Position: i,
				Label:    step.Label,
				StepTime: step.Time,
				State:    string(step.State),
			})
		}
		records = append(records, rec)
	}

	for i, p := range past {
		records = append(records, OrderRecord{
			Reference:  p.ID,
			Restaurant: p.Restaurant,
			Status:     strings.ToLower(p.Status),
			PlacedAt:   now.Add(-time.Duration(i+1) * 24 * time.Hour),
			Summary:    p.Summary,
			Rating:     p.Rating,
			ImageURI:   p.ImageURI,
			Total:      p.Total,
		})
	}

	if len(records) == 0 {
		return nil
	}

	if err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	}); err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}

	m.logger.WithField("orders", len(records)).Info("Seeded orders")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.logger.Warn("Dropping all database tables")

	// Children before parents
	tables := []interface{}{
		&SupportTicketRecord{},
		&StatusStepRecord{},
		&OrderItemRecord{},
		&OrderRecord{},
	}

	if err := m.db.Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return nil
}
