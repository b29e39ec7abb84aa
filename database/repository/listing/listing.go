package listingRepo

import (
	"context"
	"errors"

	"roaddarts/models"
	"roaddarts/services/search"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no listing matches the lookup.
var ErrNotFound = errors.New("listing not found")

// ListingRepository defines methods for listing data access.
type ListingRepository interface {
	// Create inserts a new listing.
	Create(ctx context.Context, l *models.Listing) error
	// CreateMany inserts several listings at once.
	CreateMany(ctx context.Context, ls []models.Listing) error
	// GetByID retrieves a listing by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	// GetBySlug retrieves a listing with its review aggregates.
	GetBySlug(ctx context.Context, slug string) (*models.ListingResult, error)
	// Update replaces the mutable fields of a listing.
	Update(ctx context.Context, l *models.Listing) error
	// UpdateWithDocument applies a raw update document to a listing.
	UpdateWithDocument(ctx context.Context, id string, update bson.M) error
	// Delete removes a listing by ID.
	Delete(ctx context.Context, id string) error
	// SlugExists reports whether a slug is taken.
	SlugExists(ctx context.Context, slug string) (bool, error)
	// NameExists reports whether another listing (other than excludeID) uses name.
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	// ListWithoutSlug returns listings stored without a slug.
	ListWithoutSlug(ctx context.Context) ([]models.Listing, error)
	// CountByOwner counts listings owned by userID.
	CountByOwner(ctx context.Context, userID string) (int64, error)
	// Search executes a search plan.
	Search(ctx context.Context, plan search.Plan) (*models.SearchResult, error)
}
