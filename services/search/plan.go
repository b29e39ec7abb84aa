package search

import "roaddarts/models"

// Computed fields attached to every search result.
const (
	FieldTotalReviews  = "totalReviews"
	FieldAverageRating = "averageRating"
	FieldDistance      = "distance"
	FieldCreatedAt     = "createdAt"
	FieldID            = "id"
)

// SortField is one ordering term. NullsLast places documents whose value is
// null after every document that has one.
type SortField struct {
	Field     string
	Desc      bool
	NullsLast bool
}

// Plan is the store-independent description of one search. A store executes
// it as: match Predicate, annotate distance from Origin, drop listings outside
// RadiusKm, join reviews, drop listings under MinRating, drop unreviewed
// listings when ExcludeUnreviewed, then fork into the sorted page and the total count.
type Plan struct {
	Predicate         Predicate
	Origin            *models.GeoPoint
	RadiusKm          *float64
	MinRating         *float64
	ExcludeUnreviewed bool
	SortKey           SortKey
	Sort              []SortField
	Skip              int
	Limit             int
}

// BuildPlan assembles the plan for criteria and an optional resolved origin.
func BuildPlan(c Criteria, origin *models.GeoPoint) Plan {
	key := c.Sort.Key(origin != nil)
	p := Plan{
		Predicate: BuildPredicate(c),
		Origin:    origin,
		MinRating: c.MinRating,
		SortKey:   key,
		Sort:      sortFields(key),
		Skip:      (c.Page - 1) * c.PageSize,
		Limit:     c.PageSize,
	}
	if origin != nil {
		p.RadiusKm = c.RadiusKm
	} else {
		p.ExcludeUnreviewed = key == SortRating || key == SortReviews
	}
	return p
}

func sortFields(key SortKey) []SortField {
	var primary []SortField
	switch key {
	case SortRating:
		primary = []SortField{{Field: FieldAverageRating, Desc: true}}
	case SortReviews:
		primary = []SortField{{Field: FieldTotalReviews, Desc: true}}
	case SortDistance:
		primary = []SortField{{Field: FieldDistance, NullsLast: true}}
	}
	return append(primary,
		SortField{Field: FieldCreatedAt, Desc: true},
		SortField{Field: FieldID},
	)
}
