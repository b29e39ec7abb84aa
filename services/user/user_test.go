package user

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	userRepo "roaddarts/database/repository/user"
	"roaddarts/models"
	"roaddarts/services/socialauth"
	"roaddarts/services/tasks"
	"roaddarts/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct{ byID map[string]*models.User }

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, userRepo.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userRepo.ErrNotFound
}

func (m *memUsers) GetByIdentifier(ctx context.Context, id string) (*models.User, error) {
	if u, err := m.GetByEmail(ctx, id); err == nil {
		return u, nil
	}
	for _, u := range m.byID {
		if u.Username == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userRepo.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, e := range m.byID {
		if e.Email == u.Email || e.Username == u.Username {
			return userRepo.ErrDuplicate
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdateSetDocument(_ context.Context, id string, set bson.M) error {
	u, ok := m.byID[id]
	if !ok {
		return userRepo.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "status":
			u.Status = v.(string)
		case "passwordHash":
			u.PasswordHash = v.(string)
		case "googleId":
			u.GoogleID = v.(string)
		}
	}
	return nil
}

type memStore struct{ m map[string]string }

func (s *memStore) Save(_ context.Context, prefix, token, userID string, _ time.Duration) error {
	s.m[prefix+token] = userID
	return nil
}

func (s *memStore) Lookup(_ context.Context, prefix, token string) (string, error) {
	if v, ok := s.m[prefix+token]; ok {
		return v, nil
	}
	return "", utils.ErrTokenNotFound
}

func (s *memStore) Consume(ctx context.Context, prefix, token string) (string, error) {
	v, err := s.Lookup(ctx, prefix, token)
	delete(s.m, prefix+token)
	return v, err
}

func (s *memStore) Delete(_ context.Context, prefix, token string) error {
	delete(s.m, prefix+token)
	return nil
}

type fakeBilling struct {
	subs  map[string]string
	perms models.Permissions
}

func (b *fakeBilling) SubscriptionIDByEmail(_ context.Context, email string) (string, error) {
	return b.subs[email], nil
}

func (b *fakeBilling) Current(_ context.Context, id string) (*models.SubscriptionDetails, error) {
	return &models.SubscriptionDetails{ID: id, Status: "active"}, nil
}

func (b *fakeBilling) Permissions(_ context.Context, _, subID string) (models.Permissions, error) {
	if subID == "" {
		return models.Permissions{}, nil
	}
	return b.perms, nil
}

type fixedCount int64

func (c fixedCount) CountByOwner(context.Context, string) (int64, error) { return int64(c), nil }

type fakeGoogle struct {
	info *socialauth.UserInfo
	err  error
}

func (g *fakeGoogle) Verify(context.Context, string) (*socialauth.UserInfo, error) { return g.info, g.err }

type sent struct{ kind, to, link string }

type recordingMail struct{ sent []sent }

func (r *recordingMail) QueueVerification(_ context.Context, to, _, link string) error {
	r.sent = append(r.sent, sent{"verify", to, link})
	return nil
}
func (r *recordingMail) QueueWelcome(_ context.Context, to, _ string) error {
	r.sent = append(r.sent, sent{"welcome", to, ""})
	return nil
}
func (r *recordingMail) QueuePasswordReset(_ context.Context, to, _, link string) error {
	r.sent = append(r.sent, sent{"reset", to, link})
	return nil
}
func (r *recordingMail) QueueContactOwner(context.Context, string, tasks.EmailPayload) error {
	return nil
}

func (r *recordingMail) last(kind string) sent {
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].kind == kind {
			return r.sent[i]
		}
	}
	return sent{}
}

func tokenFrom(t *testing.T, link string) string {
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type fixture struct {
	svc     *DefaultUserService
	users   *memUsers
	store   *memStore
	mail    *recordingMail
	billing *fakeBilling
	google  *fakeGoogle
}

func newFixture(count int64) *fixture {
	f := &fixture{
		users:   &memUsers{byID: map[string]*models.User{}},
		store:   &memStore{m: map[string]string{}},
		mail:    &recordingMail{},
		billing: &fakeBilling{subs: map[string]string{}, perms: models.Permissions{MaxListings: 2}},
		google:  &fakeGoogle{},
	}
	f.svc = &DefaultUserService{
		Repo:        f.users,
		Tokens:      utils.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour),
		Store:       f.store,
		Billing:     f.billing,
		Listings:    fixedCount(count),
		Google:      f.google,
		Mail:        f.mail,
		FrontendURL: "https://roaddarts.test",
		PublicURL:   "https://api.roaddarts.test/",
	}
	return f
}

func signup(t *testing.T, f *fixture, email string) *AuthResult {
	res, err := f.svc.Signup(context.Background(), models.SignupRequest{Username: "thrower", Email: email, Password: "bullseye123"})
	require.NoError(t, err)
	return res
}

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	f := newFixture(0)
	res := signup(t, f, "  Thrower@Example.com ")

	assert.True(t, res.IsNewUser)
	assert.Equal(t, "thrower@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.Equal(t, models.UserUnverified, res.User.Status)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, res.User.ID, f.store.m[utils.RefreshTokenPrefix+res.RefreshToken])

	verify := f.mail.last("verify")
	assert.Equal(t, "thrower@example.com", verify.to)
	assert.True(t, strings.HasPrefix(verify.link, "https://api.roaddarts.test/api/auth/verify-email?token="))
	assert.Equal(t, "thrower@example.com", f.mail.last("welcome").to)

	_, err := f.svc.Signup(context.Background(), models.SignupRequest{Username: "other", Email: "thrower@example.com", Password: "bullseye123"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignupWithSubscriptionBecomesOwner(t *testing.T) {
	f := newFixture(0)
	f.billing.subs["venue@example.com"] = "sub_123"
	res := signup(t, f, "venue@example.com")

	assert.Equal(t, models.RoleOwner, res.User.Role)
	assert.Equal(t, models.UserVerified, res.User.Status)
	assert.Equal(t, "sub_123", f.users.byID[res.User.ID].StripeSubID)
	assert.Empty(t, f.mail.last("verify").to)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(0)
	_, err := f.svc.Signup(context.Background(), models.SignupRequest{Username: "ab", Email: "nope", Password: "short"})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestLogin(t *testing.T) {
	f := newFixture(0)
	signup(t, f, "thrower@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, models.LoginRequest{Identifier: "thrower", Password: "bullseye123"})
	require.NoError(t, err)
	claims, err := f.svc.Tokens.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)

	_, err = f.svc.Login(ctx, models.LoginRequest{Identifier: "THROWER@example.com", Password: "bullseye123"})
	assert.NoError(t, err)

	_, err = f.svc.Login(ctx, models.LoginRequest{Identifier: "thrower", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, models.LoginRequest{Identifier: "ghost", Password: "bullseye123"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGoogleSignIn(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	f.google.info = &socialauth.UserInfo{Subject: "g-1", Email: "new@example.com", Picture: "https://img/p.png"}

	res, err := f.svc.GoogleSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, models.UserVerified, res.User.Status)
	assert.True(t, strings.HasPrefix(res.User.Username, "new-"))

	_, err = f.svc.Login(ctx, models.LoginRequest{Identifier: "new@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrGoogleAccount)

	again, err := f.svc.GoogleSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, res.User.ID, again.User.ID)

	f.google.err = errors.New("bad signature")
	_, err = f.svc.GoogleSignIn(ctx, "forged")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleSignInLinksExistingAccount(t *testing.T) {
	f := newFixture(0)
	existing := signup(t, f, "thrower@example.com")
	f.google.info = &socialauth.UserInfo{Subject: "g-9", Email: "thrower@example.com"}

	res, err := f.svc.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, res.User.ID)
	assert.Equal(t, "g-9", f.users.byID[existing.User.ID].GoogleID)
	assert.Equal(t, models.UserVerified, f.users.byID[existing.User.ID].Status)
}

func TestMe(t *testing.T) {
	f := newFixture(1)
	f.billing.subs["venue@example.com"] = "sub_1"
	res := signup(t, f, "venue@example.com")

	p, err := f.svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Subscription)
	assert.Equal(t, "sub_1", p.Subscription.ID)
	assert.Equal(t, 2, p.Permissions.MaxListings)
	assert.Equal(t, int64(1), p.ListingCount)
	assert.True(t, p.CanAdd)

	f.svc.Listings = fixedCount(2)
	p, err = f.svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.False(t, p.CanAdd)

	_, err = f.svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(0)
	res := signup(t, f, "thrower@example.com")
	ctx := context.Background()

	refreshed, err := f.svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, res.User.ID, refreshed.User.ID)

	_, err = f.svc.Refresh(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.svc.Logout(ctx, res.RefreshToken))
	_, err = f.svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, f.svc.Logout(ctx, ""))
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(0)
	res := signup(t, f, "thrower@example.com")
	ctx := context.Background()
	token := tokenFrom(t, f.mail.last("verify").link)

	require.NoError(t, f.svc.VerifyEmail(ctx, token))
	assert.Equal(t, models.UserVerified, f.users.byID[res.User.ID].Status)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, token), ErrInvalidToken)
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "thrower@example.com"), ErrAlreadyVerified)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(0)
	signup(t, f, "thrower@example.com")
	first := f.mail.last("verify").link

	require.NoError(t, f.svc.ResendVerification(context.Background(), "Thrower@example.com"))
	assert.NotEqual(t, first, f.mail.last("verify").link)
	assert.ErrorIs(t, f.svc.ResendVerification(context.Background(), "ghost@example.com"), ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(0)
	res := signup(t, f, "thrower@example.com")
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, res.User.ID, models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, res.User.ID, models.ChangePasswordRequest{CurrentPassword: "bullseye123", NewPassword: "newpassword1"}))
	hash := f.users.byID[res.User.ID].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")))
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(0)
	signup(t, f, "thrower@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "thrower@example.com"))
	link := f.mail.last("reset").link
	assert.True(t, strings.HasPrefix(link, "https://roaddarts.test/reset-password?token="))
	token := tokenFrom(t, link)

	require.NoError(t, f.svc.ResetPassword(ctx, models.ResetPasswordRequest{Token: token, NewPassword: "freshpass99"}))
	_, err := f.svc.Login(ctx, models.LoginRequest{Identifier: "thrower", Password: "freshpass99"})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, models.ResetPasswordRequest{Token: token, NewPassword: "another999"})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "ghost@example.com"), ErrUserNotFound)
}
