package user

import (
	"context"
	"fmt"
	"strings"

	"roaddarts/models"
	"roaddarts/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Signup registers a password account. An existing billing subscription for
// the email promotes the account to a verified owner straight away.
func (s *DefaultUserService) Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserUnverified,
	}
	s.applySubscription(ctx, u)

	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("User registered", zap.String("id", u.ID), zap.String("role", u.Role))

	result, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	result.IsNewUser = true

	if u.Status == models.UserUnverified {
		if err := s.sendVerification(ctx, u); err != nil {
			utils.GetLogger().Error("Signup: failed to queue verification email", zap.String("id", u.ID), zap.Error(err))
		}
	}
	if err := s.Mail.QueueWelcome(ctx, u.Email, u.Username); err != nil {
		utils.GetLogger().Error("Signup: failed to queue welcome email", zap.String("id", u.ID), zap.Error(err))
	}
	return result, nil
}

// applySubscription links a billing subscription found for the user's email.
// Lookup failures leave the account as a plain user.
func (s *DefaultUserService) applySubscription(ctx context.Context, u *models.User) {
	if s.Billing == nil {
		return
	}
	subID, err := s.Billing.SubscriptionIDByEmail(ctx, u.Email)
	if err != nil {
		utils.GetLogger().Warn("Subscription lookup failed", zap.String("email", u.Email), zap.Error(err))
		return
	}
	if subID == "" {
		return
	}
	u.StripeSubID = subID
	u.Role = models.RoleOwner
	u.Status = models.UserVerified
}

// issue signs a token pair for u and records the refresh token.
func (s *DefaultUserService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	access, err := s.Tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.Tokens.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.Store.Save(ctx, utils.RefreshTokenPrefix, refresh, u.ID, s.Tokens.RefreshTTL); err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
