// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_bot/internal/feature/quote/domain/entity"
	"stock_bot/internal/feature/quote/usecase"
)

const defaultTTL = 5 * time.Minute

// CachingMarketRepository decorates a MarketRepository and a NewsRepository with Redis caching.
// A nil Redis client turns it into a pass-through.
type CachingMarketRepository struct {
	market    usecase.MarketRepository
	news      usecase.NewsRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var (
	_ usecase.MarketRepository = (*CachingMarketRepository)(nil)
	_ usecase.NewsRepository   = (*CachingMarketRepository)(nil)
)

// NewCachingMarketRepository wraps the given providers.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "quote".
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, market usecase.MarketRepository, news usecase.NewsRepository, namespace string) *CachingMarketRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = "quote"
	}
	return &CachingMarketRepository{
		market:    market,
		news:      news,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// GetHistory returns cached history when present, otherwise asks the provider and caches the result.
func (c *CachingMarketRepository) GetHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	key := fmt.Sprintf("%s:history:%s", c.namespace, safe(symbol))
	return cached(ctx, c, key, func() ([]entity.PricePoint, error) {
		return c.market.GetHistory(ctx, symbol)
	})
}

// GetHeadlines returns cached headlines when present. Empty results are not cached.
func (c *CachingMarketRepository) GetHeadlines(ctx context.Context, symbol string, count int) ([]string, error) {
	if c.news == nil {
		return []string{}, nil
	}
	key := fmt.Sprintf("%s:news:%s:%d", c.namespace, safe(symbol), count)
	return cached(ctx, c, key, func() ([]string, error) {
		return c.news.GetHeadlines(ctx, symbol, count)
	})
}

// Invalidate drops every cached entry for the symbol.
func (c *CachingMarketRepository) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.deleteByPattern(ctx, fmt.Sprintf("%s:history:%s", c.namespace, safe(symbol))); err != nil {
		return err
	}
	return c.deleteByPattern(ctx, fmt.Sprintf("%s:news:%s:*", c.namespace, safe(symbol)))
}

func cached[T any](ctx context.Context, c *CachingMarketRepository, key string, load func() ([]T, error)) ([]T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to provider
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
		}
	}
	return out, nil
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMarketRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
