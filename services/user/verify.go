package user

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"roaddarts/models"
	"roaddarts/utils"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *DefaultUserService) sendVerification(ctx context.Context, u *models.User) error {
	token, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	if err := s.Store.Save(ctx, utils.VerifyTokenPrefix, token, u.ID, utils.VerifyTokenTTL); err != nil {
		return err
	}
	link := strings.TrimRight(s.PublicURL, "/") + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	return s.Mail.QueueVerification(ctx, u.Email, u.Username, link)
}

// VerifyEmail marks the account behind a single-use verification token as verified.
func (s *DefaultUserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	userID, err := s.Store.Consume(ctx, utils.VerifyTokenPrefix, token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return s.Repo.UpdateSetDocument(ctx, userID, bson.M{"status": models.UserVerified})
}

func (s *DefaultUserService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Status == models.UserVerified {
		return ErrAlreadyVerified
	}
	return s.sendVerification(ctx, u)
}
