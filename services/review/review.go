package review

import (
	"context"
	"errors"
	"math"
	"strings"

	listingRepo "roaddarts/database/repository/listing"
	reviewRepo "roaddarts/database/repository/review"
	"roaddarts/models"
	"roaddarts/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateReview = reviewRepo.ErrDuplicate
	ErrListingNotFound = listingRepo.ErrNotFound
	ErrUnauthenticated = errors.New("sign in to leave a review")
)

type ReviewService interface {
	Create(ctx context.Context, actor models.Actor, listingID string, in models.ReviewInput) (*models.Review, error)
	List(ctx context.Context, listingID string) ([]models.Review, error)
}

// DefaultReviewService is the production implementation.
type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Listings listingRepo.ListingRepository
}

// OverallOf returns the explicit overall rating, or the rounded mean of the
// five aspect ratings when none was given.
func OverallOf(r models.Ratings) int {
	if r.OverallRating != nil {
		return *r.OverallRating
	}
	sum := r.BoardCondition + r.ThrowingLaneConditions + r.LightingConditions + r.SpaceAllocated + r.GamingAmbience
	return int(math.Round(float64(sum) / 5))
}

func (s *DefaultReviewService) Create(ctx context.Context, actor models.Actor, listingID string, in models.ReviewInput) (*models.Review, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if _, err := s.Listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	overall := OverallOf(in.Ratings)
	in.Ratings.OverallRating = &overall
	rv := &models.Review{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		ListingID: listingID,
		Ratings:   in.Ratings,
		Img:       in.Img,
		Text:      in.Text,
	}
	if err := s.Repo.Create(ctx, rv); err != nil {
		if !errors.Is(err, ErrDuplicateReview) {
			utils.GetLogger().Error("Failed to create review", zap.String("listing", listingID), zap.Error(err))
		}
		return nil, err
	}
	return rv, nil
}

// List returns the listing's reviews, newest first.
func (s *DefaultReviewService) List(ctx context.Context, listingID string) ([]models.Review, error) {
	return s.Repo.ListByListing(ctx, listingID)
}
