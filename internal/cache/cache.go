package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
)

const (
	ProductCacheTTL     = 10 * time.Minute
	ProductListCacheTTL = 1 * time.Minute
)

// ProductCache lit les produits depuis Redis puis ScyllaDB (cache-through)
type ProductCache struct {
	redis *redis.Client
	repo  repository.ProductRepository
	log   *zap.SugaredLogger
}

var _ repository.ProductRepository = (*ProductCache)(nil)

func NewProductCache(client *redis.Client, repo repository.ProductRepository, log *zap.SugaredLogger) *ProductCache {
	return &ProductCache{redis: client, repo: repo, log: log}
}

func productKey(id gocql.UUID) string { return "product:" + id.String() }

func listKey(limit int) string { return "products:all:" + strconv.Itoa(limit) }

// GetProduct récupère un produit depuis Redis ou ScyllaDB
func (c *ProductCache) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	key := productKey(id)

	// 1. Essayer le cache Redis
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var p models.Product
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warnf("⚠️ Lecture cache produit %s impossible: %v", id, err)
	}

	// 2. Récupérer de ScyllaDB
	p, err := c.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	c.set(ctx, key, p, ProductCacheTTL)
	return p, nil
}

func (c *ProductCache) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	key := listKey(limit)

	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached []models.Product
		if json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	}

	products, err := c.repo.ListProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, products, ProductListCacheTTL)
	return products, nil
}

// UpsertProduct écrit en base puis invalide le cache
func (c *ProductCache) UpsertProduct(ctx context.Context, p *models.Product) error {
	if err := c.repo.UpsertProduct(ctx, p); err != nil {
		return err
	}
	c.Invalidate(ctx, p.ID)
	return nil
}

// Invalidate supprime le produit et toutes les listes en cache
func (c *ProductCache) Invalidate(ctx context.Context, id gocql.UUID) {
	keys := []string{productKey(id)}
	iter := c.redis.Scan(ctx, 0, "products:all:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warnf("⚠️ Scan des listes produits impossible: %v", err)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnf("⚠️ Invalidation cache produit %s impossible: %v", id, err)
	}
}

func (c *ProductCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warnf("⚠️ Écriture cache %s impossible: %v", key, err)
	}
}
