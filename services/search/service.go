package search

import (
	"context"
	"fmt"
	"time"

	"roaddarts/models"
	"roaddarts/utils"

	"go.uber.org/zap"
)

// ListingSearcher executes a plan against the listing store.
type ListingSearcher interface {
	Search(ctx context.Context, plan Plan) (*models.SearchResult, error)
}

// SearchService runs listing searches.
type SearchService interface {
	Search(ctx context.Context, c Criteria) (*models.SearchResult, error)
}

// DefaultSearchService resolves the geo origin, builds the plan and hands it to the store.
type DefaultSearchService struct {
	Store          ListingSearcher
	Geocoder       Geocoder
	GeocodeTimeout time.Duration
}

// NewSearchService wires a search service. geocoder may be nil, in which
// case only explicit coordinates establish an origin.
func NewSearchService(store ListingSearcher, geocoder Geocoder, geocodeTimeout time.Duration) *DefaultSearchService {
	return &DefaultSearchService{Store: store, Geocoder: geocoder, GeocodeTimeout: geocodeTimeout}
}

func (s *DefaultSearchService) Search(ctx context.Context, c Criteria) (*models.SearchResult, error) {
	origin := resolveOrigin(ctx, s.Geocoder, s.GeocodeTimeout, c)
	plan := BuildPlan(c, origin)

	res, err := s.Store.Search(ctx, plan)
	if err != nil {
		utils.GetLogger().Error("Listing search failed", zap.String("sort", string(plan.SortKey)), zap.Error(err))
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	if res.Data == nil {
		res.Data = []models.ListingResult{}
	}
	return res, nil
}
