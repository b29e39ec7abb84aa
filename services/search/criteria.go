package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"roaddarts/models"
)

// SortFlags records which sort options were requested. Several may be set;
// Key resolves them to the one that applies.
type SortFlags struct {
	Rating   bool
	Reviews  bool
	Distance bool
	Newest   bool
}

// SortKey is the single effective ordering of a search.
type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortRating   SortKey = "rating"
	SortReviews  SortKey = "reviews"
	SortDistance SortKey = "distance"
)

// Key picks rating, then reviews, then distance (only with an origin), then newest.
func (f SortFlags) Key(hasOrigin bool) SortKey {
	switch {
	case f.Rating:
		return SortRating
	case f.Reviews:
		return SortReviews
	case f.Distance && hasOrigin:
		return SortDistance
	default:
		return SortNewest
	}
}

// Paging bounds the page size a caller may request.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaging is used when no paging configuration is supplied.
var DefaultPaging = Paging{DefaultPageSize: 10, MaxPageSize: 100}

// Criteria is a validated search request.
type Criteria struct {
	Category      string
	PriceCategory string
	City          string
	State         string
	Country       string
	Zipcode       string
	BordType      string
	User          string
	Search        string
	Status        string
	Validation    string
	AgeLimit      *int
	Amenities     []string
	Lat           *float64
	Lng           *float64
	MinRating     *float64
	RadiusKm      *float64
	Sort          SortFlags
	Page          int
	PageSize      int
}

// Locality returns the parts used for geocoding.
func (c Criteria) Locality() models.Locality {
	return models.Locality{City: c.City, State: c.State, Zipcode: c.Zipcode}
}

// ParseCriteria validates raw query parameters. Any malformed value yields an
// *InputError.
func ParseCriteria(q url.Values, paging Paging) (Criteria, error) {
	if paging.DefaultPageSize <= 0 || paging.MaxPageSize <= 0 {
		paging = DefaultPaging
	}
	c := Criteria{
		Category:      get(q, "category"),
		PriceCategory: get(q, "priceCategory"),
		City:          get(q, "city"),
		State:         get(q, "state"),
		Country:       get(q, "country"),
		Zipcode:       get(q, "zipcode"),
		BordType:      get(q, "bordtype"),
		User:          get(q, "user"),
		Search:        get(q, "search"),
		Status:        get(q, "status"),
		Validation:    get(q, "validation"),
		Page:          1,
		PageSize:      paging.DefaultPageSize,
	}

	if v := get(q, "agelimit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, inputErr("agelimit", "must be a non-negative integer")
		}
		c.AgeLimit = &n
	}

	if v := get(q, "amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if !models.IsAmenityFlag(a) {
				return c, inputErr("amenities", "unknown amenity %q", a)
			}
			c.Amenities = append(c.Amenities, a)
		}
	}

	lat, err := parseFloat(q, "lat", -90, 90)
	if err != nil {
		return c, err
	}
	lng, err := parseFloat(q, "lng", -180, 180)
	if err != nil {
		return c, err
	}
	if (lat == nil) != (lng == nil) {
		return c, inputErr("lat/lng", "both lat and lng are required")
	}
	c.Lat, c.Lng = lat, lng

	if c.MinRating, err = parseFloat(q, "rating", 0, 5); err != nil {
		return c, err
	}
	if c.RadiusKm, err = parseFloat(q, "radius", 0, math.MaxFloat64); err != nil {
		return c, err
	}
	if c.RadiusKm != nil && *c.RadiusKm == 0 {
		return c, inputErr("radius", "must be greater than zero")
	}

	if c.Sort, err = parseSort(get(q, "sortBy")); err != nil {
		return c, err
	}

	if v := get(q, "page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c, inputErr("page", "must be a positive integer")
		}
		c.Page = n
	}
	if v := get(q, "pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c, inputErr("pageSize", "must be a positive integer")
		}
		c.PageSize = min(n, paging.MaxPageSize)
	}
	if c.Page-1 > math.MaxInt/c.PageSize {
		return c, inputErr("page", "is out of range")
	}
	return c, nil
}

func parseSort(v string) (SortFlags, error) {
	var f SortFlags
	for _, s := range strings.Split(v, ",") {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "":
		case "rating":
			f.Rating = true
		case "reviews":
			f.Reviews = true
		case "distance":
			f.Distance = true
		case "newest":
			f.Newest = true
		default:
			return f, inputErr("sortBy", "unknown sort %q", s)
		}
	}
	return f, nil
}

func parseFloat(q url.Values, key string, lo, hi float64) (*float64, error) {
	v := get(q, key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, inputErr(key, "must be a number")
	}
	if f < lo || f > hi {
		return nil, inputErr(key, "must be between %g and %g", lo, hi)
	}
	return &f, nil
}

func get(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}
