package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTokenNotFound is returned when a stored token is unknown or expired.
var ErrTokenNotFound = errors.New("token not found or expired")

// TokenStore keeps opaque tokens (refresh, email verification, password
// reset) in Redis keyed by prefix and the token's hash.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Save binds token to userID for ttl.
func (s *TokenStore) Save(ctx context.Context, prefix, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, prefix+HashToken(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Lookup returns the user bound to token.
func (s *TokenStore) Lookup(ctx context.Context, prefix, token string) (string, error) {
	userID, err := s.client.Get(ctx, prefix+HashToken(token)).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return userID, nil
}

// Consume looks up token and deletes it so it cannot be reused.
func (s *TokenStore) Consume(ctx context.Context, prefix, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, prefix+HashToken(token)).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return userID, nil
}

// Delete removes token.
func (s *TokenStore) Delete(ctx context.Context, prefix, token string) error {
	return s.client.Del(ctx, prefix+HashToken(token)).Err()
}

// RandomToken returns a random hex token of n bytes.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
