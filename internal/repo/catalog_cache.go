package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/catalog"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// cacheClient is the subset of redis.Cmdable the catalog cache needs.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const (
	catalogKeyDinners   = "catalog:dinners"
	catalogKeyStyles    = "catalog:serving_styles"
	catalogKeyMenuItems = "catalog:menu_items"
)

// CachedCatalog serves catalog lists from Redis and falls back to src on a
// miss or when Redis is unavailable.
type CachedCatalog struct {
	rdb cacheClient
	src catalog.Source
	ttl time.Duration
}

func NewCachedCatalog(rdb cacheClient, src catalog.Source, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{rdb: rdb, src: src, ttl: ttl}
}

func (c *CachedCatalog) ListActiveDinners(ctx context.Context) ([]model.Dinner, error) {
	return cached(ctx, c, catalogKeyDinners, c.src.ListActiveDinners)
}

func (c *CachedCatalog) ListActiveStyles(ctx context.Context) ([]model.ServingStyle, error) {
	return cached(ctx, c, catalogKeyStyles, c.src.ListActiveStyles)
}

func (c *CachedCatalog) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	return cached(ctx, c, catalogKeyMenuItems, c.src.ListMenuItems)
}

// Invalidate drops every cached catalog list.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, catalogKeyDinners, catalogKeyStyles, catalogKeyMenuItems).Err(); err != nil {
		logx.Error().Err(err).Msg("failed to delete catalog cache keys")
		return errx.WrapRedis(err)
	}
	return nil
}

func cached[T any](ctx context.Context, c *CachedCatalog, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		logx.Warn().Str("key", key).Msg("discarding undecodable catalog cache entry")
	case errors.Is(err, redis.Nil):
	default:
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("catalog cache read failed")
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Dur("ttl", c.ttl).Msg("catalog cache write failed")
	}
	return out, nil
}

var _ catalog.Source = (*CachedCatalog)(nil)
