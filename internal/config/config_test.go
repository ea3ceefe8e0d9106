package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, CartStoreRedis, cfg.Cart.Store)
	assert.Equal(t, OrdersProviderMock, cfg.Orders.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Cart.SessionTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Orders.MockCurrentDelay)
	assert.Equal(t, 320*time.Millisecond, cfg.Orders.MockHistoryDelay)
	assert.Equal(t, 220*time.Millisecond, cfg.Orders.MockSupportDelay)
	assert.True(t, cfg.NeedsRedis())

	opensAt, closesAt, err := cfg.PickupWindow()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour, opensAt)
	assert.Equal(t, 14*time.Hour, closesAt)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CART_STORE", "Memory")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("PICKUP_OPEN", "09:30")
	t.Setenv("PICKUP_SLOT_INTERVAL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ORDERS_HISTORY_LIMIT", "not-a-number")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, CartStoreMemory, cfg.Cart.Store)
	assert.False(t, cfg.NeedsRedis())
	assert.Equal(t, 15*time.Minute, cfg.Cart.PickupSlotInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 20, cfg.Orders.HistoryLimit)

	opensAt, _, err := cfg.PickupWindow()
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, opensAt)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"unknown cart store", func(c *Config) { c.Cart.Store = "disk" }},
		{"unknown orders provider", func(c *Config) { c.Orders.Provider = "graphql" }},
		{"bad timezone", func(c *Config) { c.Cart.PickupTimezone = "Mars/Olympus" }},
		{"bad opening time", func(c *Config) { c.Cart.PickupOpen = "ten" }},
		{"closing before opening", func(c *Config) { c.Cart.PickupClose = "09:00" }},
		{"zero slot interval", func(c *Config) { c.Cart.PickupSlotInterval = 0 }},
		{"redis host missing", func(c *Config) { c.Redis.Host = "" }},
		{"database driver unknown", func(c *Config) {
			c.Orders.Provider = OrdersProviderPostgres
			c.Database.Driver = "mysql"
		}},
		{"database host missing", func(c *Config) {
			c.Orders.Provider = OrdersProviderPostgres
			c.Database.Host = ""
		}},
		{"order reset in production", func(c *Config) {
			c.App.Environment = "production"
			c.Orders.ResetOnStart = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseSettingsIgnoredForMockProvider(t *testing.T) {
	cfg := FromEnv()
	cfg.Database.Host = ""
	cfg.Database.Driver = "unknown"
	assert.NoError(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := FromEnv()
	assert.Contains(t, cfg.GetDatabaseDSN(), "dbname=technomart_db")

	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = "file::memory:"
	assert.Equal(t, "file::memory:", cfg.GetDatabaseDSN())

	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}
