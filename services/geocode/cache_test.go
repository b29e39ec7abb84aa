package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"roaddarts/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	m map[string]models.GeoPoint
}

func (c *mapCache) get(_ context.Context, key string) (*models.GeoPoint, error) {
	if p, ok := c.m[key]; ok {
		return &p, nil
	}
	return nil, nil
}

func (c *mapCache) set(_ context.Context, key string, p models.GeoPoint, _ time.Duration) error {
	c.m[key] = p
	return nil
}

type countingGeocoder struct {
	point *models.GeoPoint
	err   error
	calls int
}

func (g *countingGeocoder) Geocode(context.Context, models.Locality) (*models.GeoPoint, error) {
	g.calls++
	return g.point, g.err
}

func TestCachedGeocoderHit(t *testing.T) {
	next := &countingGeocoder{point: &models.GeoPoint{Lat: 1, Lng: 2}}
	g := &CachedGeocoder{next: next, cache: &mapCache{m: map[string]models.GeoPoint{}}, ttl: time.Hour}

	for i := 0; i < 3; i++ {
		p, err := g.Geocode(context.Background(), models.Locality{City: "Austin"})
		require.NoError(t, err)
		assert.Equal(t, &models.GeoPoint{Lat: 1, Lng: 2}, p)
	}
	assert.Equal(t, 1, next.calls)

	_, _ = g.Geocode(context.Background(), models.Locality{City: "AUSTIN"})
	assert.Equal(t, 1, next.calls, "keys are case-insensitive")
}

func TestCachedGeocoderSkipsMisses(t *testing.T) {
	cache := &mapCache{m: map[string]models.GeoPoint{}}
	next := &countingGeocoder{}
	g := &CachedGeocoder{next: next, cache: cache, ttl: time.Hour}

	p, err := g.Geocode(context.Background(), models.Locality{City: "Nowhere"})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Empty(t, cache.m)

	next.err = errors.New("down")
	_, err = g.Geocode(context.Background(), models.Locality{City: "Nowhere"})
	assert.Error(t, err)
	assert.Empty(t, cache.m)
}

func TestCachedGeocoderRedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	next := &countingGeocoder{point: &models.GeoPoint{Lat: 3, Lng: 4}}
	g := NewCachedGeocoder(next, client, time.Minute)

	p, err := g.Geocode(context.Background(), models.Locality{State: "TX"})
	require.NoError(t, err)
	assert.Equal(t, &models.GeoPoint{Lat: 3, Lng: 4}, p)
	assert.Equal(t, 1, next.calls)
}
