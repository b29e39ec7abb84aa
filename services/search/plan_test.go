package search

import (
	"testing"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildPlanPaging(t *testing.T) {
	p := BuildPlan(Criteria{Page: 3, PageSize: 20}, nil)
	assert.Equal(t, 40, p.Skip)
	assert.Equal(t, 20, p.Limit)
}

func TestBuildPlanTieBreaks(t *testing.T) {
	p := BuildPlan(Criteria{Page: 1, PageSize: 10, Sort: SortFlags{Rating: true}}, nil)
	assert.Equal(t, []SortField{
		{Field: FieldAverageRating, Desc: true},
		{Field: FieldCreatedAt, Desc: true},
		{Field: FieldID},
	}, p.Sort)

	p = BuildPlan(Criteria{Page: 1, PageSize: 10}, nil)
	assert.Equal(t, SortNewest, p.SortKey)
	assert.Equal(t, []SortField{{Field: FieldCreatedAt, Desc: true}, {Field: FieldID}}, p.Sort)
}

func TestBuildPlanDistanceNeedsOrigin(t *testing.T) {
	radius := 10.0
	c := Criteria{Page: 1, PageSize: 10, Sort: SortFlags{Distance: true}, RadiusKm: &radius}

	withOrigin := BuildPlan(c, &models.GeoPoint{Lat: 1, Lng: 1})
	assert.Equal(t, SortDistance, withOrigin.SortKey)
	assert.True(t, withOrigin.Sort[0].NullsLast)
	assert.Equal(t, &radius, withOrigin.RadiusKm)

	without := BuildPlan(c, nil)
	assert.Equal(t, SortNewest, without.SortKey)
	assert.Nil(t, without.RadiusKm)
	assert.False(t, without.ExcludeUnreviewed)
}

func TestBuildPlanExcludeUnreviewed(t *testing.T) {
	at := &models.GeoPoint{Lat: 1, Lng: 1}
	cases := []struct {
		name   string
		sort   SortFlags
		origin *models.GeoPoint
		want   bool
	}{
		{"rating without origin", SortFlags{Rating: true}, nil, true},
		{"reviews without origin", SortFlags{Reviews: true}, nil, true},
		{"rating with origin", SortFlags{Rating: true}, at, false},
		{"newest without origin", SortFlags{}, nil, false},
		{"distance with origin", SortFlags{Distance: true}, at, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := BuildPlan(Criteria{Page: 1, PageSize: 10, Sort: tc.sort}, tc.origin)
			assert.Equal(t, tc.want, p.ExcludeUnreviewed)
		})
	}
}
