package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"roaddarts/models"
	"roaddarts/services/search"
	"roaddarts/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cachePrefix = "geocode:"

type pointCache interface {
	get(ctx context.Context, key string) (*models.GeoPoint, error)
	set(ctx context.Context, key string, p models.GeoPoint, ttl time.Duration) error
}

type redisPointCache struct {
	client *redis.Client
}

func (c redisPointCache) get(ctx context.Context, key string) (*models.GeoPoint, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p models.GeoPoint
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c redisPointCache) set(ctx context.Context, key string, p models.GeoPoint, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// CachedGeocoder remembers resolved localities in Redis. Cache errors are
// logged and never fail the lookup.
type CachedGeocoder struct {
	next  search.Geocoder
	cache pointCache
	ttl   time.Duration
}

func NewCachedGeocoder(next search.Geocoder, client *redis.Client, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: redisPointCache{client: client}, ttl: ttl}
}

func cacheKey(loc models.Locality) string {
	return cachePrefix + strings.ToLower(loc.String())
}

func (g *CachedGeocoder) Geocode(ctx context.Context, loc models.Locality) (*models.GeoPoint, error) {
	key := cacheKey(loc)
	if p, err := g.cache.get(ctx, key); err != nil {
		utils.GetLogger().Warn("Geocode cache read failed", zap.String("key", key), zap.Error(err))
	} else if p != nil {
		return p, nil
	}

	p, err := g.next.Geocode(ctx, loc)
	if err != nil || p == nil {
		return p, err
	}
	if err := g.cache.set(ctx, key, *p, g.ttl); err != nil {
		utils.GetLogger().Warn("Geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}
