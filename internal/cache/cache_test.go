package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
	"patchwork_back_end/internal/repository/repotest"
)

func newTestCache(t *testing.T) (*ProductCache, *repotest.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repotest.New()
	return NewProductCache(client, store, logger.Nop()), store, mr
}

func TestGetProductCachesResult(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newTestCache(t)
	id := store.AddProduct(models.Product{Name: "Écusson", PriceCents: 900, IsActive: true})

	p, err := c.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Écusson", p.Name)
	assert.True(t, mr.Exists(productKey(id)))
	assert.Equal(t, ProductCacheTTL, mr.TTL(productKey(id)))

	// La base n'est plus consultée une fois le produit en cache
	store.Err = errors.New("scylla down")
	p, err = c.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(900), p.PriceCents)
}

func TestGetProductNotFound(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, err := c.GetProduct(context.Background(), [16]byte{1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newTestCache(t)
	id := store.AddProduct(models.Product{Name: "Patch", PriceCents: 500})

	_, err := c.GetProduct(ctx, id)
	require.NoError(t, err)
	list, err := c.ListProducts(ctx, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, mr.Exists(listKey(20)))

	p := store.Products[id]
	p.PriceCents = 750
	require.NoError(t, c.UpsertProduct(ctx, &p))

	assert.False(t, mr.Exists(productKey(id)))
	assert.False(t, mr.Exists(listKey(20)))

	got, err := c.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got.PriceCents)
}
