package utils

import (
	"errors"
	"testing"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validListing() models.Listing {
	return models.Listing{
		Name:     "The Oche",
		Tagline:  "Darts all night",
		ShortDis: "Twelve steel-tip boards",
		BordType: models.BoardSteelTip,
		Status:   models.StatusActive,
	}
}

func TestValidateListingOK(t *testing.T) {
	l := validListing()
	lo, hi := 5.0, 20.0
	l.Price = models.Price{Category: "$$", Min: &lo, Max: &hi}
	assert.NoError(t, ValidateStruct(l))
}

func TestValidateListingEnums(t *testing.T) {
	l := validListing()
	l.BordType = "Magnetic"
	l.Status = "Open"
	l.Validation.Status = "Maybe"
	l.Price.Category = "$$$$$"

	err := ValidateStruct(l)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "bordtype")
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "validation.status")
	assert.Contains(t, verr.Fields, "price.category")
}

func TestValidateListingRequiredAndRanges(t *testing.T) {
	l := validListing()
	l.Name = ""
	neg := -1
	l.AgeLimit = &neg
	lo, hi := 30.0, 10.0
	l.Price = models.Price{Min: &lo, Max: &hi}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	l.Amenities.Other = []string{"darts", string(long)}

	err := ValidateStruct(l)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Contains(t, verr.Fields, "agelimit")
	assert.Equal(t, "must not exceed max", verr.Fields["price.min"])
	assert.Contains(t, verr.Fields, "amenities.other[1]")
}

func TestValidateReviewInput(t *testing.T) {
	in := models.ReviewInput{
		Ratings: models.Ratings{BoardCondition: 5, ThrowingLaneConditions: 4, LightingConditions: 3, SpaceAllocated: 2, GamingAmbience: 6},
	}
	err := ValidateStruct(in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "ratings.gamingAmbience")
	assert.Contains(t, verr.Fields, "text")
}

func TestValidatorIsShared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
	l := validListing()
	assert.NoError(t, ValidateStruct(&l))
}
