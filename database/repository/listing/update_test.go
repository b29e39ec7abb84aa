package listingRepo

import (
	"testing"

	"roaddarts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUpdateDocumentClearsOmittedFields(t *testing.T) {
	l := &models.Listing{
		ID:       "l1",
		Name:     "Oche",
		BordType: models.BoardBoth,
		Location: models.Location{City: "Austin"},
	}
	update, err := updateDocument(l)
	require.NoError(t, err)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Oche", set["name"])
	assert.Contains(t, set, "location")
	assert.Contains(t, set, "price")

	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok)
	for _, key := range []string{"agelimit", "category", "tags", "phone", "website", "faqs"} {
		assert.Contains(t, unset, key)
		assert.NotContains(t, set, key)
	}
	assert.NotContains(t, unset, "name")
	assert.NotContains(t, unset, "location")

	loc, ok := set["location"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, loc, "geotag")
}

func TestUpdateDocumentKeepsSetFields(t *testing.T) {
	age := 21
	l := &models.Listing{ID: "l1", Name: "Oche", AgeLimit: &age, Category: "Bar", Tags: []string{"league"},
		Phone: "555", Website: "https://oche.test", FAQs: []models.FAQ{{Q: "q", A: "a"}}}
	update, err := updateDocument(l)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.EqualValues(t, 21, set["agelimit"])
	assert.NotContains(t, update, "$unset")
}
