package userRepo

import (
	"context"
	"errors"

	"roaddarts/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when the email or username is already registered.
	ErrDuplicate = errors.New("email or username already registered")
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by email address (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIdentifier retrieves a user by email or username.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateSetDocument applies a $set to the user with the given ID.
	UpdateSetDocument(ctx context.Context, id string, set bson.M) error
}
