package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	point *models.GeoPoint
	err   error
	block bool
	calls []models.Locality
}

func (f *fakeGeocoder) Geocode(ctx context.Context, loc models.Locality) (*models.GeoPoint, error) {
	f.calls = append(f.calls, loc)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.point, f.err
}

func TestHaversineSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(51.5, -0.12, 51.5, -0.12))
}

func TestHaversineAntipodal(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
	assert.InDelta(t, 20015.0, d, 1.0)

	d = Haversine(40, -75, -40, 105)
	assert.InDelta(t, 20015.0, d, 1.0)
}

func TestHaversineAlongMeridian(t *testing.T) {
	g := kmNorth(50)
	assert.InDelta(t, 50.0, Haversine(origin.Lat, origin.Lng, g.Lat, g.Lng), 1e-6)
}

func TestResolveOriginExplicitWins(t *testing.T) {
	lat, lng := 1.5, 2.5
	g := &fakeGeocoder{point: &models.GeoPoint{Lat: 9, Lng: 9}}
	p := resolveOrigin(context.Background(), g, time.Second, Criteria{Lat: &lat, Lng: &lng, City: "Austin"})
	require.NotNil(t, p)
	assert.Equal(t, models.GeoPoint{Lat: 1.5, Lng: 2.5}, *p)
	assert.Empty(t, g.calls)
}

func TestResolveOriginGeocodesLocality(t *testing.T) {
	g := &fakeGeocoder{point: &models.GeoPoint{Lat: 30.2, Lng: -97.7}}
	p := resolveOrigin(context.Background(), g, time.Second, Criteria{City: "Austin", Zipcode: "78701"})
	require.NotNil(t, p)
	require.Len(t, g.calls, 1)
	assert.Equal(t, "Austin, 78701", g.calls[0].String())
}

func TestResolveOriginNoLocality(t *testing.T) {
	g := &fakeGeocoder{point: &models.GeoPoint{}}
	assert.Nil(t, resolveOrigin(context.Background(), g, time.Second, Criteria{Country: "US"}))
	assert.Empty(t, g.calls)
}

func TestResolveOriginDegradesOnFailure(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("quota exceeded")}
	assert.Nil(t, resolveOrigin(context.Background(), g, time.Second, Criteria{State: "TX"}))

	unresolved := &fakeGeocoder{}
	assert.Nil(t, resolveOrigin(context.Background(), unresolved, time.Second, Criteria{State: "TX"}))
}

func TestResolveOriginTimeout(t *testing.T) {
	g := &fakeGeocoder{block: true}
	start := time.Now()
	assert.Nil(t, resolveOrigin(context.Background(), g, 20*time.Millisecond, Criteria{City: "Nowhere"}))
	assert.Less(t, time.Since(start), 2*time.Second)
}
