package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"roaddarts/models"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("geocoding API key not configured")

// GoogleGeocoder resolves localities with the Google Geocoding API.
type GoogleGeocoder struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		APIKey:  apiKey,
		BaseURL: googleGeocodeURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the first match for the locality, or nil when Google finds none.
func (g *GoogleGeocoder) Geocode(ctx context.Context, loc models.Locality) (*models.GeoPoint, error) {
	if g.APIKey == "" {
		return nil, ErrNotConfigured
	}
	address := loc.String()
	if address == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch data.Status {
	case "OK":
		if len(data.Results) == 0 {
			return nil, nil
		}
		l := data.Results[0].Geometry.Location
		return &models.GeoPoint{Lat: l.Lat, Lng: l.Lng}, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("geocoding failed: %s %s", data.Status, data.ErrorMessage)
	}
}
