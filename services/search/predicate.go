package search

import "strings"

// ClauseKind enumerates the filter shapes a Predicate can hold.
type ClauseKind int

const (
	// ExactMatch compares a field to a value, case-sensitively.
	ExactMatch ClauseKind = iota
	// CaseInsensitiveMatch compares a whole field to a value ignoring case.
	CaseInsensitiveMatch
	// RangeMatch bounds a numeric field. AllowAbsent also admits documents
	// where the field is missing or null.
	RangeMatch
	// SubstringAny matches when the term occurs, ignoring case, in any of Fields.
	SubstringAny
	// BooleanFlagAll requires every field in Fields to be true.
	BooleanFlagAll
)

func (k ClauseKind) String() string {
	switch k {
	case ExactMatch:
		return "exact"
	case CaseInsensitiveMatch:
		return "caseInsensitive"
	case RangeMatch:
		return "range"
	case SubstringAny:
		return "substringAny"
	case BooleanFlagAll:
		return "booleanFlagAll"
	}
	return "unknown"
}

// Clause is a single typed filter condition over listing field paths.
type Clause struct {
	Kind        ClauseKind
	Field       string
	Fields      []string
	Value       string
	Min         *float64
	Max         *float64
	AllowAbsent bool
}

// Predicate is a conjunction of clauses. The zero value matches everything.
type Predicate struct {
	Clauses []Clause
}

// Empty reports whether the predicate has no clauses.
func (p *Predicate) Empty() bool {
	return len(p.Clauses) == 0
}

// Exact adds a case-sensitive equality clause. Blank values are ignored.
func (p *Predicate) Exact(field, value string) *Predicate {
	if value = strings.TrimSpace(value); value != "" {
		p.Clauses = append(p.Clauses, Clause{Kind: ExactMatch, Field: field, Value: value})
	}
	return p
}

// Fold adds a whole-string, case-insensitive equality clause. Blank values are ignored.
func (p *Predicate) Fold(field, value string) *Predicate {
	if value = strings.TrimSpace(value); value != "" {
		p.Clauses = append(p.Clauses, Clause{Kind: CaseInsensitiveMatch, Field: field, Value: value})
	}
	return p
}

// AtMost adds an inclusive upper bound on field.
func (p *Predicate) AtMost(field string, max float64, allowAbsent bool) *Predicate {
	p.Clauses = append(p.Clauses, Clause{Kind: RangeMatch, Field: field, Max: &max, AllowAbsent: allowAbsent})
	return p
}

// ContainsAny adds a free-text clause over fields. Blank terms are ignored.
func (p *Predicate) ContainsAny(term string, fields ...string) *Predicate {
	if term = strings.TrimSpace(term); term != "" {
		p.Clauses = append(p.Clauses, Clause{Kind: SubstringAny, Fields: fields, Value: term})
	}
	return p
}

// AllTrue requires every flag field to be true. An empty list is ignored.
func (p *Predicate) AllTrue(fields ...string) *Predicate {
	if len(fields) > 0 {
		p.Clauses = append(p.Clauses, Clause{Kind: BooleanFlagAll, Fields: fields})
	}
	return p
}

// Listing field paths used by the search filters.
const (
	FieldStatus           = "status"
	FieldValidationStatus = "validation.status"
	FieldCategory         = "category"
	FieldBordType         = "bordtype"
	FieldCity             = "location.city"
	FieldState            = "location.state"
	FieldCountry          = "location.country"
	FieldPriceCategory    = "price.category"
	FieldAgeLimit         = "agelimit"
	FieldOwner            = "userId"
	FieldAmenities        = "amenities"
)

// TextSearchFields are scanned by the free-text "search" parameter.
var TextSearchFields = []string{
	"name",
	"tagline",
	"shortDis",
	"tags",
	"location.address",
	"location.zipcode",
	"bordtype",
	"category",
}

// BuildPredicate translates parsed criteria into the listing match predicate.
// The age-limit clause and the free-text clause are independent conjuncts, so
// requesting both narrows by both.
func BuildPredicate(c Criteria) Predicate {
	var p Predicate
	p.Fold(FieldStatus, c.Status).
		Fold(FieldValidationStatus, c.Validation).
		Fold(FieldCategory, c.Category).
		Fold(FieldBordType, c.BordType).
		Fold(FieldCity, c.City).
		Fold(FieldState, c.State).
		Fold(FieldCountry, c.Country).
		Exact(FieldPriceCategory, c.PriceCategory).
		Exact(FieldOwner, c.User)

	if c.AgeLimit != nil {
		p.AtMost(FieldAgeLimit, float64(*c.AgeLimit), true)
	}

	flags := make([]string, 0, len(c.Amenities))
	for _, a := range c.Amenities {
		flags = append(flags, FieldAmenities+"."+a)
	}
	p.AllTrue(flags...)

	p.ContainsAny(c.Search, TextSearchFields...)
	return p
}
