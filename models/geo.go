package models

import "strings"

// GeoPoint is a resolved latitude/longitude origin.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Locality is a free-text place description handed to a geocoder.
type Locality struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

// Empty reports whether no part of the locality is set.
func (l Locality) Empty() bool {
	return l.String() == ""
}

// String joins the non-empty parts with ", ".
func (l Locality) String() string {
	var parts []string
	for _, p := range []string{l.City, l.State, l.Zipcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
