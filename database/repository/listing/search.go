package listingRepo

import (
	"context"
	"fmt"
	"math"
	"time"

	"roaddarts/models"
	"roaddarts/services/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const distanceMissing = "_distanceMissing"

// Search runs the plan as a single aggregation whose $facet yields the page
// and the total count of the same filtered set.
func (r *MongoListingRepo) Search(ctx context.Context, plan search.Plan) (*models.SearchResult, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, buildPipeline(plan, r.reviewsColl))
	if err != nil {
		return nil, fmt.Errorf("failed to run search aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Data       []models.ListingResult `bson:"data"`
		TotalCount []struct {
			Count int64 `bson:"count"`
		} `bson:"totalCount"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	res := &models.SearchResult{Data: []models.ListingResult{}}
	if len(facets) == 0 {
		return res, nil
	}
	if facets[0].Data != nil {
		res.Data = facets[0].Data
	}
	if len(facets[0].TotalCount) > 0 {
		res.TotalCount = facets[0].TotalCount[0].Count
	}
	return res, nil
}

func buildPipeline(plan search.Plan, reviewsColl string) mongo.Pipeline {
	pipeline := mongo.Pipeline{stage("$match", matchFilter(plan.Predicate))}

	if plan.Origin != nil {
		pipeline = append(pipeline, stage("$addFields", bson.M{
			search.FieldDistance: distanceExpr(plan.Origin.Lat, plan.Origin.Lng),
		}))
		if plan.RadiusKm != nil {
			pipeline = append(pipeline, stage("$match", bson.M{
				search.FieldDistance: bson.M{"$ne": nil, "$lte": *plan.RadiusKm},
			}))
		}
	}

	pipeline = append(pipeline, reviewStages(reviewsColl)...)

	if plan.MinRating != nil {
		pipeline = append(pipeline, stage("$match", bson.M{
			search.FieldAverageRating: bson.M{"$gte": *plan.MinRating},
		}))
	}
	if plan.ExcludeUnreviewed {
		pipeline = append(pipeline, stage("$match", bson.M{
			search.FieldTotalReviews: bson.M{"$gt": 0},
		}))
	}

	data := sortStages(plan.Sort)
	data = append(data, stage("$skip", int64(plan.Skip)), stage("$limit", int64(plan.Limit)))

	return append(pipeline, stage("$facet", bson.M{
		"data":       data,
		"totalCount": bson.A{stage("$count", "count")},
	}))
}

// reviewStages joins reviews by listing id and computes totalReviews and
// averageRating, which is 0 when no review carries an overall rating.
func reviewStages(reviewsColl string) []bson.D {
	return []bson.D{
		stage("$lookup", bson.M{
			"from":         reviewsColl,
			"localField":   "id",
			"foreignField": "listingId",
			"as":           "reviews",
		}),
		stage("$addFields", bson.M{
			search.FieldTotalReviews:  bson.M{"$size": "$reviews"},
			search.FieldAverageRating: bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.ratings.overallRating"}, 0}},
		}),
		stage("$project", bson.M{"reviews": 0}),
	}
}

// sortStages renders sort fields. Fields flagged NullsLast get a helper key
// sorted ahead of them and projected away afterwards.
func sortStages(fields []search.SortField) bson.A {
	var out bson.A
	sortDoc := bson.D{}
	helper := false
	for _, f := range fields {
		if f.NullsLast {
			out = append(out, stage("$addFields", bson.M{
				distanceMissing: bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$" + f.Field, nil}}, nil}}, 1, 0}},
			}))
			sortDoc = append(sortDoc, bson.E{Key: distanceMissing, Value: 1})
			helper = true
		}
		dir := 1
		if f.Desc {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: f.Field, Value: dir})
	}
	out = append(out, stage("$sort", sortDoc))
	if helper {
		out = append(out, stage("$project", bson.M{distanceMissing: 0}))
	}
	return out
}

// distanceExpr computes the haversine distance in km from the origin to the
// listing's stored geotag, or null when the listing has none.
func distanceExpr(lat, lng float64) bson.M {
	const latPath, lngPath = "$location.geotag.lat", "$location.geotag.lng"

	halfSinSq := func(deltaDeg interface{}) bson.M {
		return bson.M{"$pow": bson.A{
			bson.M{"$sin": bson.M{"$divide": bson.A{bson.M{"$degreesToRadians": deltaDeg}, 2}}},
			2,
		}}
	}
	a := bson.M{"$add": bson.A{
		halfSinSq(bson.M{"$subtract": bson.A{latPath, lat}}),
		bson.M{"$multiply": bson.A{
			math.Cos(lat * math.Pi / 180),
			bson.M{"$cos": bson.M{"$degreesToRadians": latPath}},
			halfSinSq(bson.M{"$subtract": bson.A{lngPath, lng}}),
		}},
	}}
	haversine := bson.M{"$multiply": bson.A{
		2 * search.EarthRadiusKm,
		bson.M{"$asin": bson.M{"$sqrt": bson.M{"$min": bson.A{1, a}}}},
	}}

	return bson.M{"$cond": bson.A{
		bson.M{"$and": bson.A{bson.M{"$isNumber": latPath}, bson.M{"$isNumber": lngPath}}},
		haversine,
		nil,
	}}
}

func stage(name string, value interface{}) bson.D {
	return bson.D{{Key: name, Value: value}}
}
