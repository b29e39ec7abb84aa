package models

import "time"

// Ratings holds the per-aspect scores of a review, each 1-5.
type Ratings struct {
	BoardCondition         int  `bson:"boardCondition" json:"boardCondition" validate:"required,min=1,max=5"`
	ThrowingLaneConditions int  `bson:"throwingLaneConditions" json:"throwingLaneConditions" validate:"required,min=1,max=5"`
	LightingConditions     int  `bson:"lightingConditions" json:"lightingConditions" validate:"required,min=1,max=5"`
	SpaceAllocated         int  `bson:"spaceAllocated" json:"spaceAllocated" validate:"required,min=1,max=5"`
	GamingAmbience         int  `bson:"gamingAmbience" json:"gamingAmbience" validate:"required,min=1,max=5"`
	OverallRating          *int `bson:"overallRating,omitempty" json:"overallRating,omitempty" validate:"omitempty,min=1,max=5"`
}

// Review is a user's rating of a listing. One per (user, listing).
type Review struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	ListingID string    `bson:"listingId" json:"listingId"`
	Ratings   Ratings   `bson:"ratings" json:"ratings"`
	Img       string    `bson:"img,omitempty" json:"img,omitempty"`
	Text      string    `bson:"text" json:"text" validate:"required"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ReviewInput is the request body for creating a review.
type ReviewInput struct {
	Ratings Ratings `json:"ratings" validate:"required"`
	Img     string  `json:"img"`
	Text    string  `json:"text" validate:"required"`
}
