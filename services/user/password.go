package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"roaddarts/models"
	"roaddarts/utils"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ChangePassword requires the current password. Google-only accounts may set
// a first password without one.
func (s *DefaultUserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		req.CurrentPassword = "-"
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return err
	}
	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return ErrInvalidCredentials
		}
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdateSetDocument(ctx, u.ID, bson.M{"passwordHash": hash})
}

// ForgotPassword mails a one-hour reset link.
func (s *DefaultUserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	if err := s.Store.Save(ctx, utils.ResetTokenPrefix, token, u.ID, utils.ResetTokenTTL); err != nil {
		return err
	}
	link := strings.TrimRight(s.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	return s.Mail.QueuePasswordReset(ctx, u.Email, u.Username, link)
}

// ResetPassword consumes a reset token and stores the new password.
func (s *DefaultUserService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := utils.ValidateStruct(&req); err != nil {
		return err
	}
	userID, err := s.Store.Consume(ctx, utils.ResetTokenPrefix, req.Token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdateSetDocument(ctx, userID, bson.M{"passwordHash": hash})
}
