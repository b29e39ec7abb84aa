package user

import (
	"context"
	"errors"
	"time"

	userRepo "roaddarts/database/repository/user"
	"roaddarts/models"
	"roaddarts/services/socialauth"
	"roaddarts/services/tasks"
	"roaddarts/utils"
)

var (
	ErrUserNotFound       = userRepo.ErrNotFound
	ErrAccountExists      = userRepo.ErrDuplicate
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGoogleAccount      = errors.New("this account uses Google sign-in")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("email already verified")
)

type UserService interface {
	// Registration and sign-in
	Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error)

	// Session
	Me(ctx context.Context, userID string) (*Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error

	// Email verification
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error

	// Passwords
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

// TokenStorer keeps opaque tokens bound to user IDs.
type TokenStorer interface {
	Save(ctx context.Context, prefix, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, prefix, token string) (string, error)
	Consume(ctx context.Context, prefix, token string) (string, error)
	Delete(ctx context.Context, prefix, token string) error
}

// Billing is the subscription lookup the account flows need.
type Billing interface {
	SubscriptionIDByEmail(ctx context.Context, email string) (string, error)
	Current(ctx context.Context, subscriptionID string) (*models.SubscriptionDetails, error)
	Permissions(ctx context.Context, email, subscriptionID string) (models.Permissions, error)
}

// ListingCounter counts the listings an account owns.
type ListingCounter interface {
	CountByOwner(ctx context.Context, userID string) (int64, error)
}

// IDTokenVerifier verifies third-party ID tokens.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*socialauth.UserInfo, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Tokens   *utils.TokenIssuer
	Store    TokenStorer
	Billing  Billing
	Listings ListingCounter
	Google   IDTokenVerifier
	Mail     tasks.EmailQueue
	// FrontendURL hosts the password reset page.
	FrontendURL string
	// PublicURL is this API's external base URL, used in verification links.
	PublicURL string
}

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	User         *models.User                `json:"user"`
	Subscription *models.SubscriptionDetails `json:"subscription,omitempty"`
	IsNewUser    bool                        `json:"isNewUser,omitempty"`
	AccessToken  string                      `json:"-"`
	RefreshToken string                      `json:"-"`
}

// Profile is the signed-in user's account overview.
type Profile struct {
	User         *models.User                `json:"user"`
	Subscription *models.SubscriptionDetails `json:"subscription,omitempty"`
	Permissions  models.Permissions          `json:"permissions"`
	ListingCount int64                       `json:"listingCount"`
	CanAdd       bool                        `json:"canAdd"`
}
