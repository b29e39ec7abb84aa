package search

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(res *models.SearchResult) []string {
	out := make([]string, 0, len(res.Data))
	for _, r := range res.Data {
		out = append(out, r.ID)
	}
	return out
}

func mustCriteria(t *testing.T, q url.Values) Criteria {
	t.Helper()
	c, err := ParseCriteria(q, DefaultPaging)
	require.NoError(t, err)
	return c
}

// abcStore holds A (rating 5, 2 reviews, 1 km), B (rating 3, 5 reviews, 50 km)
// and C (no reviews, 2 km).
func abcStore() *memStore {
	s := &memStore{listings: []models.Listing{
		listing("A", 3, kmNorth(1)),
		listing("B", 2, kmNorth(50)),
		listing("C", 1, kmNorth(2)),
	}}
	s.reviews = append(s.reviews, reviewsFor("A", 5, 5)...)
	s.reviews = append(s.reviews, reviewsFor("B", 3, 3, 3, 3, 3)...)
	return s
}

func geoQuery(sortBy string) url.Values {
	return url.Values{"lat": {"40"}, "lng": {"-75"}, "sortBy": {sortBy}}
}

func TestSearchRatingWithoutOriginExcludesUnreviewed(t *testing.T) {
	svc := NewSearchService(abcStore(), nil, time.Second)
	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{"sortBy": {"rating"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(res))
	assert.EqualValues(t, 2, res.TotalCount)
	for _, r := range res.Data {
		assert.Nil(t, r.Distance)
	}
}

func TestSearchSortPriorityWithOrigin(t *testing.T) {
	svc := NewSearchService(abcStore(), nil, time.Second)
	ctx := context.Background()

	res, err := svc.Search(ctx, mustCriteria(t, geoQuery("distance,rating")))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(res), "rating outranks distance")

	res, err = svc.Search(ctx, mustCriteria(t, geoQuery("distance")))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(res))
	require.NotNil(t, res.Data[0].Distance)
	assert.InDelta(t, 1.0, *res.Data[0].Distance, 1e-6)
	assert.InDelta(t, 2.0, *res.Data[1].Distance, 1e-6)
	assert.InDelta(t, 50.0, *res.Data[2].Distance, 1e-6)

	res, err = svc.Search(ctx, mustCriteria(t, geoQuery("reviews,distance")))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, ids(res))
}

func TestSearchDistanceNullsLast(t *testing.T) {
	store := abcStore()
	store.listings = append(store.listings, listing("D", 0, nil))
	svc := NewSearchService(store, nil, time.Second)

	res, err := svc.Search(context.Background(), mustCriteria(t, geoQuery("distance")))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B", "D"}, ids(res))
	assert.Nil(t, res.Data[3].Distance)
}

func TestSearchRadiusFilter(t *testing.T) {
	svc := NewSearchService(abcStore(), nil, time.Second)
	q := geoQuery("distance")
	q.Set("radius", "10")
	res, err := svc.Search(context.Background(), mustCriteria(t, q))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, ids(res))
	assert.EqualValues(t, 2, res.TotalCount)
}

func TestSearchAverageRating(t *testing.T) {
	store := &memStore{listings: []models.Listing{listing("X", 0, nil), listing("Y", 1, nil)}}
	store.reviews = reviewsFor("X", 3, 5)
	svc := NewSearchService(store, nil, time.Second)

	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{}))
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "X", res.Data[0].ID)
	assert.Equal(t, 2, res.Data[0].TotalReviews)
	assert.Equal(t, 4.0, res.Data[0].AverageRating)
	assert.Equal(t, 0, res.Data[1].TotalReviews)
	assert.Equal(t, 0.0, res.Data[1].AverageRating)
}

func TestSearchMinRating(t *testing.T) {
	svc := NewSearchService(abcStore(), nil, time.Second)
	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{"rating": {"4"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(res))
}

func TestSearchTieBreaks(t *testing.T) {
	store := &memStore{listings: []models.Listing{
		listing("b", 5, nil),
		listing("a", 5, nil),
		listing("c", 1, nil),
	}}
	store.reviews = append(reviewsFor("a", 4), reviewsFor("b", 4)...)
	store.reviews = append(store.reviews, reviewsFor("c", 4)...)
	svc := NewSearchService(store, nil, time.Second)

	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{"sortBy": {"rating"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(res))
}

func TestSearchPaginationKeepsTotalCount(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 23; i++ {
		store.listings = append(store.listings, listing(string(rune('a'+i)), i, nil))
	}
	svc := NewSearchService(store, nil, time.Second)
	ctx := context.Background()

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		q := url.Values{"page": {strconv.Itoa(page)}, "pageSize": {"10"}}
		res, err := svc.Search(ctx, mustCriteria(t, q))
		require.NoError(t, err)
		assert.EqualValues(t, 23, res.TotalCount)
		assert.LessOrEqual(t, len(res.Data), 10)
		for _, id := range ids(res) {
			assert.False(t, seen[id], "listing %s repeated across pages", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 23)

	res, err := svc.Search(ctx, mustCriteria(t, url.Values{"page": {"9"}}))
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Data)
	assert.EqualValues(t, 23, res.TotalCount)
}

func TestSearchIdempotent(t *testing.T) {
	svc := NewSearchService(abcStore(), nil, time.Second)
	c := mustCriteria(t, geoQuery("distance"))
	first, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchGeocoderFailureDegrades(t *testing.T) {
	store := abcStore()
	g := &fakeGeocoder{err: errors.New("boom")}
	svc := NewSearchService(store, g, time.Second)

	q := url.Values{"city": {"Springfield"}, "sortBy": {"distance"}}
	res, err := svc.Search(context.Background(), mustCriteria(t, q))
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, ids(res), "falls back to newest first")
	require.Len(t, store.plans, 1)
	assert.Nil(t, store.plans[0].Origin)
	assert.Len(t, g.calls, 1)
}

func TestSearchGeocodedOrigin(t *testing.T) {
	store := abcStore()
	g := &fakeGeocoder{point: &origin}
	svc := NewSearchService(store, g, time.Second)

	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{"zipcode": {"19019"}, "sortBy": {"distance"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(res))
}

func TestSearchStoreErrorIsFatal(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewSearchService(&memStore{err: storeErr}, nil, time.Second)
	res, err := svc.Search(context.Background(), mustCriteria(t, url.Values{}))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, storeErr)
}
