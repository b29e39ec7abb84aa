package reviewRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roaddarts/database"
	"roaddarts/models"
	"roaddarts/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when the user already reviewed the listing.
var ErrDuplicate = errors.New("review already exists for this listing")

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error
	ListByListing(ctx context.Context, listingID string) ([]models.Review, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

func NewMongoReviewRepo() *MongoReviewRepo {
	repo := &MongoReviewRepo{coll: database.DB().Collection(database.ReviewsCollection)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create review indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One review per user per listing.
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "listingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "listingId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) Create(ctx context.Context, rv *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	rv.CreatedAt, rv.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, rv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) ListByListing(ctx context.Context, listingID string) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"listingId": listingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews for listing %s: %w", listingID, err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *MongoReviewRepo) DeleteByListing(ctx context.Context, listingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"listingId": listingID}); err != nil {
		return fmt.Errorf("failed to delete reviews for listing %s: %w", listingID, err)
	}
	return nil
}
