package listingRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"roaddarts/database"
	"roaddarts/models"
	"roaddarts/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoListingRepo implements ListingRepository using MongoDB.
type MongoListingRepo struct {
	coll        *mongo.Collection
	reviewsColl string
}

// NewMongoListingRepo creates a listing repository on the application database.
func NewMongoListingRepo() *MongoListingRepo {
	repo := &MongoListingRepo{
		coll:        database.DB().Collection(database.ListingsCollection),
		reviewsColl: database.ReviewsCollection,
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create listing indexes", zap.Error(err))
	}
	return repo
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

func (r *MongoListingRepo) ensureIndexes() error {
	ctx, cancel := withTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "location.city", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoListingRepo) Create(ctx context.Context, l *models.Listing) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *MongoListingRepo) CreateMany(ctx context.Context, ls []models.Listing) error {
	if len(ls) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, 15*time.Second)
	defer cancel()

	now := time.Now()
	docs := make([]interface{}, 0, len(ls))
	for i := range ls {
		ls[i].CreatedAt, ls[i].UpdatedAt = now, now
		docs = append(docs, ls[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create listings: %w", err)
	}
	return nil
}

func (r *MongoListingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var l models.Listing
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing with id %s: %w", id, err)
	}
	return &l, nil
}

func (r *MongoListingRepo) GetBySlug(ctx context.Context, slug string) (*models.ListingResult, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"slug": slug}}}}
	pipeline = append(pipeline, reviewStages(r.reviewsColl)...)
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: 1}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing with slug %s: %w", slug, err)
	}
	defer cursor.Close(ctx)

	var out []models.ListingResult
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *MongoListingRepo) Update(ctx context.Context, l *models.Listing) error {
	l.UpdatedAt = time.Now()
	update, err := updateDocument(l)
	if err != nil {
		return err
	}
	return r.UpdateWithDocument(ctx, l.ID, update)
}

func (r *MongoListingRepo) UpdateWithDocument(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoListingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete listing with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoListingRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, bson.M{"slug": slug})
}

func (r *MongoListingRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.exists(ctx, filter)
}

func (r *MongoListingRepo) ListWithoutSlug(ctx context.Context) ([]models.Listing, error) {
	ctx, cancel := withTimeout(ctx, 15*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"slug": bson.M{"$exists": false}},
		bson.M{"slug": ""},
		bson.M{"slug": nil},
	}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list listings without slug: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Listing
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return out, nil
}

func (r *MongoListingRepo) CountByOwner(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings for user %s: %w", userID, err)
	}
	return n, nil
}

func (r *MongoListingRepo) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check listing: %w", err)
	}
	return n > 0, nil
}
