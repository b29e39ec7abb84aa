package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roaddarts/models"
	"roaddarts/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates by email or username.
func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrGoogleAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// GoogleSignIn verifies a Google ID token and signs in the matching account,
// creating it on first use.
func (s *DefaultUserService) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.Google == nil {
		return nil, errors.New("google sign-in not configured")
	}
	info, err := s.Google.Verify(ctx, idToken)
	if err != nil {
		utils.GetLogger().Warn("GoogleSignIn: token rejected", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	u, err := s.Repo.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if u.GoogleID == "" {
			set := bson.M{"googleId": info.Subject}
			if u.Status != models.UserVerified {
				set["status"] = models.UserVerified
				u.Status = models.UserVerified
			}
			if err := s.Repo.UpdateSetDocument(ctx, u.ID, set); err != nil {
				return nil, err
			}
			u.GoogleID = info.Subject
		}
		return s.issue(ctx, u)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	u = &models.User{
		ID:       uuid.New().String(),
		Username: usernameFrom(info.Email),
		Email:    info.Email,
		GoogleID: info.Subject,
		Avatar:   info.Picture,
		Role:     models.RoleUser,
		Status:   models.UserVerified,
	}
	s.applySubscription(ctx, u)
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	result, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	result.IsNewUser = true
	if err := s.Mail.QueueWelcome(ctx, u.Email, u.Username); err != nil {
		utils.GetLogger().Error("GoogleSignIn: failed to queue welcome email", zap.String("id", u.ID), zap.Error(err))
	}
	return result, nil
}

// usernameFrom derives a username from the email's local part plus a short
// random suffix, since usernames are unique.
func usernameFrom(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	return fmt.Sprintf("%s-%s", utils.Slugify(local), uuid.New().String()[:6])
}
