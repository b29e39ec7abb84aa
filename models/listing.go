package models

import "time"

// Board types.
const (
	BoardSteelTip = "Steel Tip"
	BoardSoftTip  = "Soft Tip"
	BoardBoth     = "Both"
)

// Listing statuses.
const (
	StatusActive       = "Active"
	StatusClosedDown   = "Closed Down"
	StatusComingSoon   = "Coming Soon"
	StatusUnderRemodel = "Under Remodel"
)

// Validation statuses.
const (
	ValidationAccredited   = "Accredited"
	ValidationValidated    = "Validated"
	ValidationNotValidated = "Not Validated"
)

var (
	BoardTypes         = []string{BoardSteelTip, BoardSoftTip, BoardBoth}
	ListingStatuses    = []string{StatusActive, StatusClosedDown, StatusComingSoon, StatusUnderRemodel}
	ValidationStatuses = []string{ValidationAccredited, ValidationValidated, ValidationNotValidated}
	PriceCategories    = []string{"$", "$$", "$$$", "$$$$"}
)

// AmenityFlags lists the boolean amenity fields stored under "amenities".
var AmenityFlags = []string{
	"wheelchairAccessible",
	"outdoorSeating",
	"heatedPatio",
	"outdoorSmoking",
	"acceptsCreditCards",
	"petFriendly",
	"freeWiFi",
	"tvOnSite",
	"happyHourSpecials",
	"reservationsAccepted",
	"privateEventSpace",
	"bikeParking",
	"validatedParking",
	"billiards",
	"cornhole",
}

// IsAmenityFlag reports whether name is a known amenity flag.
func IsAmenityFlag(name string) bool {
	for _, a := range AmenityFlags {
		if a == name {
			return true
		}
	}
	return false
}

// Listing is a business venue (stored in the "businesses" collection).
type Listing struct {
	ID         string           `bson:"id" json:"id"`
	UserID     string           `bson:"userId" json:"userId"`
	Name       string           `bson:"name" json:"name" validate:"required"`
	Slug       string           `bson:"slug" json:"slug"`
	Tagline    string           `bson:"tagline" json:"tagline" validate:"required"`
	ShortDis   string           `bson:"shortDis" json:"shortDis" validate:"required"`
	Media      Media            `bson:"media" json:"media"`
	Location   Location         `bson:"location" json:"location"`
	Phone      string           `bson:"phone,omitempty" json:"phone,omitempty"`
	Website    string           `bson:"website,omitempty" json:"website,omitempty"`
	Timings    Timings          `bson:"timings" json:"timings"`
	Socials    Socials          `bson:"socials" json:"socials"`
	FAQs       []FAQ            `bson:"faqs,omitempty" json:"faqs,omitempty"`
	Price      Price            `bson:"price" json:"price"`
	AgeLimit   *int             `bson:"agelimit,omitempty" json:"agelimit,omitempty" validate:"omitempty,min=0"`
	Category   string           `bson:"category,omitempty" json:"category,omitempty"`
	Tags       []string         `bson:"tags,omitempty" json:"tags,omitempty"`
	Status     string           `bson:"status" json:"status" validate:"omitempty,listingstatus"`
	Validation ValidationRecord `bson:"validation" json:"validation"`
	BordType   string           `bson:"bordtype" json:"bordtype" validate:"required,bordtype"`
	Promotion  Promotion        `bson:"promotion" json:"promotion"`
	Amenities  Amenities        `bson:"amenities" json:"amenities"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time        `bson:"updatedAt" json:"updatedAt"`
}

type Media struct {
	Images []string `bson:"images,omitempty" json:"images,omitempty"`
	Video  string   `bson:"video,omitempty" json:"video,omitempty"`
	Logo   string   `bson:"logo,omitempty" json:"logo,omitempty"`
	Cover  string   `bson:"cover,omitempty" json:"cover,omitempty"`
}

// GeoTag is a latitude/longitude pair as stored on a listing.
type GeoTag struct {
	Lat float64 `bson:"lat" json:"lat" validate:"min=-90,max=90"`
	Lng float64 `bson:"lng" json:"lng" validate:"min=-180,max=180"`
}

type Location struct {
	GeoTag  *GeoTag `bson:"geotag,omitempty" json:"geotag,omitempty"`
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
	State   string  `bson:"state,omitempty" json:"state,omitempty"`
	City    string  `bson:"city,omitempty" json:"city,omitempty"`
	Country string  `bson:"country,omitempty" json:"country,omitempty"`
	Zipcode string  `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
}

type DayHours struct {
	Open  string `bson:"open,omitempty" json:"open,omitempty"`
	Close string `bson:"close,omitempty" json:"close,omitempty"`
}

type Timings struct {
	Mon DayHours `bson:"mon" json:"mon"`
	Tue DayHours `bson:"tue" json:"tue"`
	Wed DayHours `bson:"wed" json:"wed"`
	Thu DayHours `bson:"thu" json:"thu"`
	Fri DayHours `bson:"fri" json:"fri"`
	Sat DayHours `bson:"sat" json:"sat"`
	Sun DayHours `bson:"sun" json:"sun"`
}

type Socials struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	TikTok    string `bson:"tiktok,omitempty" json:"tiktok,omitempty"`
}

type FAQ struct {
	Q string `bson:"q" json:"q"`
	A string `bson:"a" json:"a"`
}

// Price holds the price band. Min must not exceed Max when both are set.
type Price struct {
	Category string   `bson:"category,omitempty" json:"category,omitempty" validate:"omitempty,pricecategory"`
	Min      *float64 `bson:"min,omitempty" json:"min,omitempty"`
	Max      *float64 `bson:"max,omitempty" json:"max,omitempty"`
}

type ValidationRecord struct {
	Date   *time.Time `bson:"date,omitempty" json:"date,omitempty"`
	Status string     `bson:"status" json:"status" validate:"omitempty,validationstatus"`
}

type Promotion struct {
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

type Amenities struct {
	WheelchairAccessible bool     `bson:"wheelchairAccessible" json:"wheelchairAccessible"`
	OutdoorSeating       bool     `bson:"outdoorSeating" json:"outdoorSeating"`
	HeatedPatio          bool     `bson:"heatedPatio" json:"heatedPatio"`
	OutdoorSmoking       bool     `bson:"outdoorSmoking" json:"outdoorSmoking"`
	AcceptsCreditCards   bool     `bson:"acceptsCreditCards" json:"acceptsCreditCards"`
	PetFriendly          bool     `bson:"petFriendly" json:"petFriendly"`
	FreeWiFi             bool     `bson:"freeWiFi" json:"freeWiFi"`
	TVOnSite             bool     `bson:"tvOnSite" json:"tvOnSite"`
	HappyHourSpecials    bool     `bson:"happyHourSpecials" json:"happyHourSpecials"`
	ReservationsAccepted bool     `bson:"reservationsAccepted" json:"reservationsAccepted"`
	PrivateEventSpace    bool     `bson:"privateEventSpace" json:"privateEventSpace"`
	BikeParking          bool     `bson:"bikeParking" json:"bikeParking"`
	ValidatedParking     bool     `bson:"validatedParking" json:"validatedParking"`
	Billiards            bool     `bson:"billiards" json:"billiards"`
	Cornhole             bool     `bson:"cornhole" json:"cornhole"`
	Other                []string `bson:"other" json:"other" validate:"dive,max=100"`
}

// Flag returns the value of the named amenity flag.
func (a Amenities) Flag(name string) bool {
	switch name {
	case "wheelchairAccessible":
		return a.WheelchairAccessible
	case "outdoorSeating":
		return a.OutdoorSeating
	case "heatedPatio":
		return a.HeatedPatio
	case "outdoorSmoking":
		return a.OutdoorSmoking
	case "acceptsCreditCards":
		return a.AcceptsCreditCards
	case "petFriendly":
		return a.PetFriendly
	case "freeWiFi":
		return a.FreeWiFi
	case "tvOnSite":
		return a.TVOnSite
	case "happyHourSpecials":
		return a.HappyHourSpecials
	case "reservationsAccepted":
		return a.ReservationsAccepted
	case "privateEventSpace":
		return a.PrivateEventSpace
	case "bikeParking":
		return a.BikeParking
	case "validatedParking":
		return a.ValidatedParking
	case "billiards":
		return a.Billiards
	case "cornhole":
		return a.Cornhole
	}
	return false
}

// ListingResult is a listing annotated with computed search fields.
type ListingResult struct {
	Listing       `bson:",inline"`
	TotalReviews  int      `bson:"totalReviews" json:"totalReviews"`
	AverageRating float64  `bson:"averageRating" json:"averageRating"`
	Distance      *float64 `bson:"distance,omitempty" json:"distance,omitempty"`
}

// SearchResult is one page of listings plus the size of the whole filtered set.
type SearchResult struct {
	Data       []ListingResult `json:"data"`
	TotalCount int64           `json:"totalCount"`
}
