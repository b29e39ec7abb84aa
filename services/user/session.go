package user

import (
	"context"
	"errors"

	"roaddarts/models"
	"roaddarts/utils"

	"go.uber.org/zap"
)

// subscription loads the user's current subscription. Billing failures are
// logged and reported as no subscription.
func (s *DefaultUserService) subscription(ctx context.Context, u *models.User) *models.SubscriptionDetails {
	if s.Billing == nil || u.StripeSubID == "" {
		return nil
	}
	sub, err := s.Billing.Current(ctx, u.StripeSubID)
	if err != nil {
		utils.GetLogger().Warn("Failed to load subscription", zap.String("id", u.ID), zap.Error(err))
		return nil
	}
	return sub
}

// Me returns the account with its subscription and listing allowance.
func (s *DefaultUserService) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u, Subscription: s.subscription(ctx, u)}

	if s.Billing != nil {
		perms, err := s.Billing.Permissions(ctx, u.Email, u.StripeSubID)
		if err != nil {
			utils.GetLogger().Warn("Me: failed to resolve permissions", zap.String("id", u.ID), zap.Error(err))
		}
		p.Permissions = perms
	}
	count, err := s.Listings.CountByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	p.ListingCount = count
	p.CanAdd = u.IsAdmin() || count < int64(p.Permissions.MaxListings)
	return p, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *DefaultUserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.Tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	owner, err := s.Store.Lookup(ctx, utils.RefreshTokenPrefix, refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if owner != claims.Subject {
		return nil, ErrInvalidToken
	}

	u, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	access, err := s.Tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:         u,
		Subscription: s.subscription(ctx, u),
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *DefaultUserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Store.Delete(ctx, utils.RefreshTokenPrefix, refreshToken)
}
