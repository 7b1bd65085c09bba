package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

const cacheKeyPrefix = "vigisan:registry:company:"

// RedisCache decorates a Fetcher with a read-through cache. Cache failures
// are logged and fall through to the registry; only successful lookups are cached.
type RedisCache struct {
	next    Fetcher
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

func NewRedisCache(next Fetcher, client redis.Cmdable, ttl time.Duration, logger *slog.Logger, metrics *Metrics) *RedisCache {
	return &RedisCache{
		next:    next,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func (c *RedisCache) FetchCompany(ctx context.Context, id domain.EntityID) (*Company, error) {
	key := CacheKey(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var company Company
		if jsonErr := json.Unmarshal(raw, &company); jsonErr == nil {
			c.metrics.IncCache("hit")
			return &company, nil
		}
		c.metrics.IncCache("error")
	case errors.Is(err, redis.Nil):
		c.metrics.IncCache("miss")
	default:
		c.metrics.IncCache("error")
		c.warn(ctx, "registry cache read failed", err)
	}

	company, err := c.next.FetchCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(company)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.warn(ctx, "registry cache write failed", err)
	}
	return company, nil
}

// Invalidate drops the cached record so the next lookup hits the registry.
func (c *RedisCache) Invalidate(ctx context.Context, id domain.EntityID) error {
	return c.client.Del(ctx, CacheKey(id)).Err()
}

// CacheKey is the Redis key a company record is cached under.
func CacheKey(id domain.EntityID) string {
	return cacheKeyPrefix + id.String()
}

func (c *RedisCache) warn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err)
	}
}
