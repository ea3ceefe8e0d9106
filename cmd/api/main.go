// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsephandrade/technomart-mobile-app/internal/config"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/menu"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
	"github.com/jsephandrade/technomart-mobile-app/internal/infrastructure/database/postgres"
	"github.com/jsephandrade/technomart-mobile-app/internal/infrastructure/database/redis"
	"github.com/jsephandrade/technomart-mobile-app/internal/infrastructure/messaging/rabbitmq"
	"github.com/jsephandrade/technomart-mobile-app/internal/infrastructure/provider/mock"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/handlers"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/routes"
	"github.com/jsephandrade/technomart-mobile-app/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	// Connect to Redis when the cart store or the rate limiter uses it
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to load menu catalog")
	}

	schedule, err := pickupSchedule(cfg)
	if err != nil {
		log.WithError(err).Fatal("Invalid pickup schedule")
	}

	publisher, closePublisher, err := checkoutPublisher(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up checkout events")
	}
	defer closePublisher()

	cartService := cart.NewService(cartStore(cfg, redisClient), schedule, publisher, log)

	provider, db, err := orderProvider(cfg, log, schedule.Location())
	if err != nil {
		log.WithError(err).Fatal("Failed to set up order provider")
	}
	if db != nil {
		defer db.Close()
	}

	// One viewmodel serves every order screen request
	viewmodel := order.NewViewmodel(provider, log)
	viewmodel.Activate()

	server := http.NewServer(cfg, log, routes.Handlers{
		Menu:   handlers.NewMenuHandler(catalog),
		Cart:   handlers.NewCartHandler(cartService, catalog, cfg),
		Orders: handlers.NewOrderHandler(viewmodel),
	}, db, redisClient)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down gracefully")
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	viewmodel.Close()

	log.Info("Server shutdown completed")
}

func loadCatalog(cfg *config.Config) (*menu.Catalog, error) {
	if cfg.Menu.CatalogPath == "" {
		return menu.DefaultCatalog()
	}

	f, err := os.Open(cfg.Menu.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return menu.Load(f)
}

func pickupSchedule(cfg *config.Config) (*cart.PickupSchedule, error) {
	location, err := time.LoadLocation(cfg.Cart.PickupTimezone)
	if err != nil {
		return nil, err
	}
	opensAt, closesAt, err := cfg.PickupWindow()
	if err != nil {
		return nil, err
	}
	return cart.NewPickupSchedule(location, opensAt, closesAt, cfg.Cart.PickupSlotInterval)
}

func cartStore(cfg *config.Config, redisClient *redis.Client) cart.Store {
	if cfg.Cart.Store == config.CartStoreRedis {
		return redis.NewCartStore(redisClient, cfg.Cart.SessionTTL)
	}
	return cart.NewMemoryStore(cfg.Cart.SessionTTL)
}

// checkoutPublisher publishes checked-out carts to RabbitMQ when a broker is configured
func checkoutPublisher(cfg *config.Config, log *logrus.Logger) (cart.CheckoutPublisher, func(), error) {
	if cfg.Messaging.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, checkout events are discarded")
		return cart.NopPublisher{}, func() {}, nil
	}

	conn, err := rabbitmq.Dial(cfg.Messaging.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := rabbitmq.NewPublisher(conn, cfg.Messaging.Exchange, cfg.Messaging.PublishTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	log.WithField("exchange", cfg.Messaging.Exchange).Info("Publishing checkout events")
	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}, nil
}

// orderProvider returns the configured order source. The database is returned
// as well when one was opened, so it can be health checked and closed.
func orderProvider(cfg *config.Config, log *logrus.Logger, loc *time.Location) (order.Provider, *postgres.DB, error) {
	source, err := mock.NewOrderProvider(mock.Delays{
		Current: cfg.Orders.MockCurrentDelay,
		History: cfg.Orders.MockHistoryDelay,
		Support: cfg.Orders.MockSupportDelay,
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Orders.Provider == config.OrdersProviderMock {
		return source, nil, nil
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if cfg.Orders.ResetOnStart {
		if err := migration.DropAllTables(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	if err := migration.RunAutoMigrations(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database migration failed: %w", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	if cfg.Orders.SeedOnStart {
		current, past := source.Dataset()
		if err := migration.SeedOrders(current, past); err != nil {
			log.WithError(err).Warn("Order seeding failed")
		}
	}

	return postgres.NewOrderProvider(db.GetDB(), cfg.Orders.HistoryLimit, loc), db, nil
}
