package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SCYLLA_KS_PRODUCTS_KEYSPACE", "ks_products")
	t.Setenv("SCYLLA_KS_ORDERS_KEYSPACE", "ks_orders")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Host)
	assert.Equal(t, 30*24*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, 9999, cfg.Cart.MaxQuantity)
	assert.Equal(t, "products", cfg.Elastic.Index)
	assert.Equal(t, []string{"localhost"}, cfg.Scylla.Hosts)
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("REDIS_HOST", "redis:6380")
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CART_MAX_LINES", "5")
	t.Setenv("CART_TTL", "48h")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "redis:6380", cfg.Redis.Host)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Scylla.Hosts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.Cart.MaxLines)
	assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
}

func TestFromEnvMissingRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SCYLLA_KS_PRODUCTS_KEYSPACE", "")
	t.Setenv("SCYLLA_KS_ORDERS_KEYSPACE", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SCYLLA_KS_ORDERS_KEYSPACE")
}
