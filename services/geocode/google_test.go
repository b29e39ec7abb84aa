package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, h http.HandlerFunc) *GoogleGeocoder {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g := NewGoogleGeocoder("test-key")
	g.BaseURL = srv.URL
	return g
}

func TestGeocodeOK(t *testing.T) {
	var gotAddress, gotKey string
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":30.2672,"lng":-97.7431}}}]}`))
	})

	p, err := g.Geocode(context.Background(), models.Locality{City: "Austin", State: "TX"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 30.2672, p.Lat)
	assert.Equal(t, -97.7431, p.Lng)
	assert.Equal(t, "Austin, TX", gotAddress)
	assert.Equal(t, "test-key", gotKey)
}

func TestGeocodeZeroResults(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})
	p, err := g.Geocode(context.Background(), models.Locality{Zipcode: "00000"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGeocodeErrors(t *testing.T) {
	denied := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})
	_, err := denied.Geocode(context.Background(), models.Locality{City: "Austin"})
	assert.ErrorContains(t, err, "REQUEST_DENIED")

	broken := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = broken.Geocode(context.Background(), models.Locality{City: "Austin"})
	assert.Error(t, err)

	_, err = NewGoogleGeocoder("").Geocode(context.Background(), models.Locality{City: "Austin"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeocodeRespectsContext(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Geocode(ctx, models.Locality{City: "Slowtown"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
