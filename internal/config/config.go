// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CartStoreRedis  = "redis"
	CartStoreMemory = "memory"

	OrdersProviderMock     = "mock"
	OrdersProviderPostgres = "postgres"
)

// Config holds all configuration for our application
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Cart      CartConfig
	Orders    OrdersConfig
	Menu      MenuConfig
	Messaging MessagingConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// CartConfig contains cart session and pickup configuration
type CartConfig struct {
	Store              string
	SessionTTL         time.Duration
	SessionCookie      string
	PickupTimezone     string
	PickupOpen         string
	PickupClose        string
	PickupSlotInterval time.Duration
}

// OrdersConfig selects and tunes the order data provider
type OrdersConfig struct {
	Provider         string
	MockCurrentDelay time.Duration
	MockHistoryDelay time.Duration
	MockSupportDelay time.Duration
	HistoryLimit     int
	SeedOnStart      bool
	// ResetOnStart drops the order tables before migrating
	ResetOnStart     bool
}

// MenuConfig contains catalog configuration
type MenuConfig struct {
	// CatalogPath overrides the bundled catalog when set
	CatalogPath string
}

// MessagingConfig contains message broker configuration
type MessagingConfig struct {
	RabbitMQURL    string
	Exchange       string
	PublishTimeout time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := FromEnv()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv builds the configuration from the process environment only
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "TechnoMart Canteen API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "technomart_db"),
			User:         getEnv("DB_USER", "technomart_user"),
			Password:     getEnv("DB_PASSWORD", "technomart_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "technomart.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			Issuer: getEnv("JWT_ISSUER", "technomart"),
		},
		Security: SecurityConfig{
			RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 50),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Cart-Session"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Cart: CartConfig{
			Store:              strings.ToLower(getEnv("CART_STORE", CartStoreRedis)),
			SessionTTL:         getEnvAsDuration("CART_SESSION_TTL", 24*time.Hour),
			SessionCookie:      getEnv("CART_SESSION_COOKIE", "cart_session"),
			PickupTimezone:     getEnv("PICKUP_TIMEZONE", "Asia/Manila"),
			PickupOpen:         getEnv("PICKUP_OPEN", "10:00"),
			PickupClose:        getEnv("PICKUP_CLOSE", "14:00"),
			PickupSlotInterval: getEnvAsDuration("PICKUP_SLOT_INTERVAL", 30*time.Minute),
		},
		Orders: OrdersConfig{
			Provider:         strings.ToLower(getEnv("ORDERS_PROVIDER", OrdersProviderMock)),
			MockCurrentDelay: getEnvAsDuration("ORDERS_MOCK_CURRENT_DELAY", 250*time.Millisecond),
			MockHistoryDelay: getEnvAsDuration("ORDERS_MOCK_HISTORY_DELAY", 320*time.Millisecond),
			MockSupportDelay: getEnvAsDuration("ORDERS_MOCK_SUPPORT_DELAY", 220*time.Millisecond),
			HistoryLimit:     getEnvAsInt("ORDERS_HISTORY_LIMIT", 20),
			SeedOnStart:      getEnvAsBool("ORDERS_SEED", true),
			ResetOnStart:     getEnvAsBool("ORDERS_RESET", false),
		},
		Menu: MenuConfig{
			CatalogPath: getEnv("MENU_CATALOG_PATH", ""),
		},
		Messaging: MessagingConfig{
			RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
			Exchange:       getEnv("EVENTS_EXCHANGE", "technomart.events"),
			PublishTimeout: getEnvAsDuration("EVENTS_PUBLISH_TIMEOUT", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "debug"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate JWT secret
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	// Validate server port
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	switch c.Cart.Store {
	case CartStoreRedis, CartStoreMemory:
	default:
		return fmt.Errorf("CART_STORE must be %q or %q, got %q", CartStoreRedis, CartStoreMemory, c.Cart.Store)
	}

	switch c.Orders.Provider {
	case OrdersProviderMock, OrdersProviderPostgres:
	default:
		return fmt.Errorf("ORDERS_PROVIDER must be %q or %q, got %q", OrdersProviderMock, OrdersProviderPostgres, c.Orders.Provider)
	}

	if _, err := time.LoadLocation(c.Cart.PickupTimezone); err != nil {
		return fmt.Errorf("PICKUP_TIMEZONE is invalid: %w", err)
	}
	opensAt, closesAt, err := c.PickupWindow()
	if err != nil {
		return err
	}
	if closesAt < opensAt {
		return fmt.Errorf("PICKUP_CLOSE must not be before PICKUP_OPEN")
	}
	if c.Cart.PickupSlotInterval <= 0 {
		return fmt.Errorf("PICKUP_SLOT_INTERVAL must be positive")
	}

	// Validate database configuration
	if c.Orders.Provider == OrdersProviderPostgres {
		switch c.Database.Driver {
		case "postgres":
			if c.Database.Host == "" {
				return fmt.Errorf("DB_HOST is required")
			}
			if c.Database.Name == "" {
				return fmt.Errorf("DB_NAME is required")
			}
			if c.Database.User == "" {
				return fmt.Errorf("DB_USER is required")
			}
		case "sqlite":
			if c.Database.SQLitePath == "" {
				return fmt.Errorf("DB_SQLITE_PATH is required")
			}
		default:
			return fmt.Errorf("DB_DRIVER must be \"postgres\" or \"sqlite\", got %q", c.Database.Driver)
		}
	}
	if c.Orders.ResetOnStart && c.IsProduction() {
		return fmt.Errorf("ORDERS_RESET is not allowed in production")
	}

	// Validate Redis configuration
	if c.NeedsRedis() && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	return nil
}

// NeedsRedis reports whether any enabled component is backed by Redis
func (c *Config) NeedsRedis() bool {
	return c.Cart.Store == CartStoreRedis || c.Security.RateLimitEnabled
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// PickupWindow returns the opening and closing times as offsets from midnight
func (c *Config) PickupWindow() (time.Duration, time.Duration, error) {
	opensAt, err := parseClock(c.Cart.PickupOpen)
	if err != nil {
		return 0, 0, fmt.Errorf("PICKUP_OPEN is invalid: %w", err)
	}
	closesAt, err := parseClock(c.Cart.PickupClose)
	if err != nil {
		return 0, 0, fmt.Errorf("PICKUP_CLOSE is invalid: %w", err)
	}
	return opensAt, closesAt, nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
