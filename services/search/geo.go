package search

import (
	"context"
	"math"
	"time"

	"roaddarts/models"
	"roaddarts/utils"

	"go.uber.org/zap"
)

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Geocoder resolves a locality to a point. A nil point with a nil error
// means the locality could not be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, loc models.Locality) (*models.GeoPoint, error)
}

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, a)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// resolveOrigin returns the explicit coordinates when given, otherwise a
// best-effort geocode of the locality. Geocoder failures are logged and
// reported as "no origin".
func resolveOrigin(ctx context.Context, g Geocoder, timeout time.Duration, c Criteria) *models.GeoPoint {
	if c.Lat != nil && c.Lng != nil {
		return &models.GeoPoint{Lat: *c.Lat, Lng: *c.Lng}
	}
	loc := c.Locality()
	if loc.Empty() || g == nil {
		return nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	point, err := g.Geocode(ctx, loc)
	if err != nil {
		utils.GetLogger().Warn("Geocoding failed; continuing without origin",
			zap.String("locality", loc.String()), zap.Error(err))
		return nil
	}
	if point == nil {
		utils.GetLogger().Debug("Locality not resolvable", zap.String("locality", loc.String()))
	}
	return point
}
