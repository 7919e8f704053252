// Package cache holds the optional redis-backed read cache for public
// catalog lookups. Order and cart paths always read the database; only
// the storefront product pages go through here.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nattawatj/go-storefront/app/models"
	"go.uber.org/zap"
)

const productTTL = 5 * time.Minute

type ProductCache struct {
	client *redis.Client
}

// NewProductCache wraps a redis client. A nil client yields a disabled
// cache whose methods are all no-ops.
func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

func (c *ProductCache) enabled() bool {
	return c != nil && c.client != nil
}

func productKey(slug string) string {
	return "product:slug:" + slug
}

// GetBySlug returns the cached product, or nil on a miss.
func (c *ProductCache) GetBySlug(ctx context.Context, slug string) *models.Product {
	if !c.enabled() {
		return nil
	}

	raw, err := c.client.Get(ctx, productKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("product cache read failed", zap.String("slug", slug), zap.Error(err))
		}
		return nil
	}

	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil
	}
	return &product
}

func (c *ProductCache) Set(ctx context.Context, product *models.Product) {
	if !c.enabled() || product == nil {
		return
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(product.Slug), raw, productTTL).Err(); err != nil {
		zap.L().Warn("product cache write failed", zap.String("slug", product.Slug), zap.Error(err))
	}
}

// Invalidate drops cached entries after any product or stock write.
func (c *ProductCache) Invalidate(ctx context.Context, slugs ...string) {
	if !c.enabled() || len(slugs) == 0 {
		return
	}

	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, productKey(slug))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("product cache invalidation failed", zap.Error(err))
	}
}
