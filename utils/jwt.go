package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Token kinds carried in the "typ" claim.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the subset of claims the API relies on.
type TokenClaims struct {
	Subject string
	Email   string
	Role    string
	Kind    string
}

// TokenIssuer signs and validates HS256 access and refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken creates a signed access token for the user.
func (t *TokenIssuer) GenerateAccessToken(subject, email, role string) (string, error) {
	return generate(t.accessSecret, AccessToken, subject, email, role, t.AccessTTL)
}

// GenerateRefreshToken creates a signed refresh token for the user.
func (t *TokenIssuer) GenerateRefreshToken(subject, email, role string) (string, error) {
	return generate(t.refreshSecret, RefreshToken, subject, email, role, t.RefreshTTL)
}

func (t *TokenIssuer) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	return validate(t.accessSecret, AccessToken, tokenString)
}

func (t *TokenIssuer) ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	return validate(t.refreshSecret, RefreshToken, tokenString)
}

func generate(secret []byte, kind, subject, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  role,
		"typ":   kind,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func validate(secret []byte, kind, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	typ, _ := claims["typ"].(string)
	if sub == "" || typ != kind {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &TokenClaims{Subject: sub, Email: email, Role: role, Kind: typ}, nil
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
