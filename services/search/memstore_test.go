package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"roaddarts/models"
)

// memStore evaluates a Plan over in-memory listings and reviews with the same
// stage order the Mongo store uses.
type memStore struct {
	listings []models.Listing
	reviews  []models.Review
	err      error
	calls    int
	plans    []Plan
}

func (m *memStore) Search(_ context.Context, plan Plan) (*models.SearchResult, error) {
	m.calls++
	m.plans = append(m.plans, plan)
	if m.err != nil {
		return nil, m.err
	}

	rows := []models.ListingResult{}
	for _, l := range m.listings {
		if !matchPredicate(plan.Predicate, l) {
			continue
		}
		r := models.ListingResult{Listing: l}
		if plan.Origin != nil && l.Location.GeoTag != nil {
			d := Haversine(plan.Origin.Lat, plan.Origin.Lng, l.Location.GeoTag.Lat, l.Location.GeoTag.Lng)
			r.Distance = &d
		}
		if plan.RadiusKm != nil && (r.Distance == nil || *r.Distance > *plan.RadiusKm) {
			continue
		}
		sum, rated := 0, 0
		for _, rv := range m.reviews {
			if rv.ListingID != l.ID {
				continue
			}
			r.TotalReviews++
			if rv.Ratings.OverallRating != nil {
				sum += *rv.Ratings.OverallRating
				rated++
			}
		}
		if rated > 0 {
			r.AverageRating = float64(sum) / float64(rated)
		}
		if plan.MinRating != nil && r.AverageRating < *plan.MinRating {
			continue
		}
		if plan.ExcludeUnreviewed && r.TotalReviews == 0 {
			continue
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool { return lessBy(plan.Sort, rows[i], rows[j]) })

	total := int64(len(rows))
	start := min(plan.Skip, len(rows))
	end := min(start+plan.Limit, len(rows))
	return &models.SearchResult{Data: rows[start:end], TotalCount: total}, nil
}

func lessBy(fields []SortField, a, b models.ListingResult) bool {
	for _, f := range fields {
		if c := compareField(f, a, b); c != 0 {
			return c < 0
		}
	}
	return false
}

func compareField(f SortField, a, b models.ListingResult) int {
	var c int
	switch f.Field {
	case FieldAverageRating:
		c = cmpFloat(a.AverageRating, b.AverageRating)
	case FieldTotalReviews:
		c = a.TotalReviews - b.TotalReviews
	case FieldDistance:
		switch {
		case a.Distance == nil && b.Distance == nil:
			return 0
		case a.Distance == nil:
			return 1
		case b.Distance == nil:
			return -1
		}
		c = cmpFloat(*a.Distance, *b.Distance)
	case FieldCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case FieldID:
		c = strings.Compare(a.ID, b.ID)
	}
	if f.Desc {
		return -c
	}
	return c
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func matchPredicate(p Predicate, l models.Listing) bool {
	for _, c := range p.Clauses {
		if !matchClause(c, l) {
			return false
		}
	}
	return true
}

func matchClause(c Clause, l models.Listing) bool {
	switch c.Kind {
	case ExactMatch:
		return contains(stringField(l, c.Field), func(v string) bool { return v == c.Value })
	case CaseInsensitiveMatch:
		return contains(stringField(l, c.Field), func(v string) bool { return strings.EqualFold(v, c.Value) })
	case RangeMatch:
		if l.AgeLimit == nil {
			return c.AllowAbsent
		}
		v := float64(*l.AgeLimit)
		return (c.Min == nil || v >= *c.Min) && (c.Max == nil || v <= *c.Max)
	case SubstringAny:
		term := strings.ToLower(c.Value)
		for _, f := range c.Fields {
			if contains(stringField(l, f), func(v string) bool { return strings.Contains(strings.ToLower(v), term) }) {
				return true
			}
		}
		return false
	case BooleanFlagAll:
		for _, f := range c.Fields {
			if !l.Amenities.Flag(strings.TrimPrefix(f, FieldAmenities+".")) {
				return false
			}
		}
		return true
	}
	return false
}

func contains(vals []string, ok func(string) bool) bool {
	for _, v := range vals {
		if ok(v) {
			return true
		}
	}
	return false
}

func stringField(l models.Listing, path string) []string {
	switch path {
	case "name":
		return []string{l.Name}
	case "tagline":
		return []string{l.Tagline}
	case "shortDis":
		return []string{l.ShortDis}
	case "tags":
		return l.Tags
	case "location.address":
		return []string{l.Location.Address}
	case "location.zipcode":
		return []string{l.Location.Zipcode}
	case FieldStatus:
		return []string{l.Status}
	case FieldValidationStatus:
		return []string{l.Validation.Status}
	case FieldCategory:
		return []string{l.Category}
	case FieldBordType:
		return []string{l.BordType}
	case FieldCity:
		return []string{l.Location.City}
	case FieldState:
		return []string{l.Location.State}
	case FieldCountry:
		return []string{l.Location.Country}
	case FieldPriceCategory:
		return []string{l.Price.Category}
	case FieldOwner:
		return []string{l.UserID}
	}
	return nil
}

// Fixture helpers.

var (
	origin  = models.GeoPoint{Lat: 40.0, Lng: -75.0}
	baseDay = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

// kmNorth returns a point the given distance due north of origin.
func kmNorth(km float64) *models.GeoTag {
	return &models.GeoTag{Lat: origin.Lat + km/(EarthRadiusKm*3.141592653589793/180), Lng: origin.Lng}
}

func listing(id string, createdDaysAgo int, geo *models.GeoTag) models.Listing {
	return models.Listing{
		ID:        id,
		Name:      "Venue " + id,
		BordType:  models.BoardSteelTip,
		Status:    models.StatusActive,
		Location:  models.Location{GeoTag: geo, City: "Springfield"},
		CreatedAt: baseDay.AddDate(0, 0, -createdDaysAgo),
	}
}

func reviewsFor(listingID string, overall ...int) []models.Review {
	out := make([]models.Review, 0, len(overall))
	for i, o := range overall {
		o := o
		out = append(out, models.Review{
			ID:        listingID + "-r" + string(rune('a'+i)),
			ListingID: listingID,
			UserID:    "u" + string(rune('a'+i)),
			Ratings:   models.Ratings{OverallRating: &o},
			Text:      "ok",
		})
	}
	return out
}
