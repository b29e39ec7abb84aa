package socialauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// GoogleJWK represents a single JSON Web Key from Google's keys endpoint.
type GoogleJWK struct {
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// GoogleJWKResponse represents the response from Google's keys endpoint.
type GoogleJWKResponse struct {
	Keys []GoogleJWK `json:"keys"`
}

// UserInfo holds the identity extracted from a verified ID token.
type UserInfo struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates Google ID tokens for one OAuth client.
type GoogleVerifier struct {
	ClientID string
	CertsURL string
	Client   *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		CertsURL: googleCertsURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// publicKeys fetches and caches Google's public keys for an hour.
func (v *GoogleVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	if time.Now().Before(v.expires) && v.keys != nil {
		defer v.mu.RUnlock()
		return v.keys, nil
	}
	v.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.CertsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build certs request: %w", err)
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google certs: %w", err)
	}
	defer resp.Body.Close()

	var keyResp GoogleJWKResponse
	if err := json.NewDecoder(resp.Body).Decode(&keyResp); err != nil {
		return nil, fmt.Errorf("failed to decode Google keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, key := range keyResp.Keys {
		pubKey, err := convertJWKToPublicKey(key.N, key.E)
		if err != nil {
			return nil, fmt.Errorf("failed to convert JWK to public key: %w", err)
		}
		keys[key.Kid] = pubKey
	}

	v.mu.Lock()
	v.keys = keys
	v.expires = time.Now().Add(time.Hour)
	v.mu.Unlock()
	return keys, nil
}

// convertJWKToPublicKey converts base64url encoded modulus and exponent to rsa.PublicKey.
func convertJWKToPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}
	var exp int
	for _, b := range eb {
		exp = exp<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}

// Verify validates the ID token signature, audience, issuer and expiry.
func (v *GoogleVerifier) Verify(ctx context.Context, tokenStr string) (*UserInfo, error) {
	if v.ClientID == "" {
		return nil, errors.New("google sign-in not configured")
	}
	keys, err := v.publicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google public keys: %w", err)
	}

	parser := new(jwt.Parser)
	unverified, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	kid, ok := unverified.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token missing kid header")
	}
	pubKey, exists := keys[kid]
	if !exists {
		return nil, errors.New("no matching Google public key found")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid Google ID token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse claims")
	}
	if !claims.VerifyAudience(v.ClientID, true) {
		return nil, errors.New("invalid audience in Google ID token")
	}
	if iss, _ := claims["iss"].(string); !googleIssuers[iss] {
		return nil, errors.New("invalid issuer in Google ID token")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, errors.New("google ID token expired")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("email claim not found in Google ID token")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google email not verified")
	}

	info := &UserInfo{Email: strings.ToLower(email)}
	info.Subject, _ = claims["sub"].(string)
	info.Name, _ = claims["name"].(string)
	info.Picture, _ = claims["picture"].(string)
	return info, nil
}
