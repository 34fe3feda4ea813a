// internal/service/inventory/infrastructure/redis_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vertex/internal/pkg/logger"
	"vertex/internal/pkg/redis"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/domain"
)

const stockCacheTTL = 30 * time.Second

// RedisStockCache 实现管理读路径的库存缓存。
// 缓存不可用时静默降级为直查台账，绝不让读请求失败。
type RedisStockCache struct {
	client *redis.Client
}

var _ application.StockCache = (*RedisStockCache)(nil)

func NewRedisStockCache(client *redis.Client) *RedisStockCache {
	return &RedisStockCache{client: client}
}

func cacheKey(productID uint64) string {
	return fmt.Sprintf("inventory:stock:%d", productID)
}

func (c *RedisStockCache) Get(ctx context.Context, productID uint64) (*domain.StockRecord, bool) {
	raw, ok, err := c.client.Get(ctx, cacheKey(productID))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Stock cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var record domain.StockRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	return &record, true
}

func (c *RedisStockCache) Set(ctx context.Context, record *domain.StockRecord) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(record.ProductID), string(raw), stockCacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Stock cache write failed")
	}
}

func (c *RedisStockCache) Invalidate(ctx context.Context, productID uint64) {
	if err := c.client.Del(ctx, cacheKey(productID)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Stock cache invalidation failed")
	}
}
