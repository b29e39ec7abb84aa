package socialauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyServer(t *testing.T, kid string, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	e := big.NewInt(int64(key.PublicKey.E)).Bytes()
	body, err := json.Marshal(GoogleJWKResponse{Keys: []GoogleJWK{{
		Kid: kid,
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(e),
	}}})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-123",
		"sub":            "google-sub",
		"email":          "Player@Example.com",
		"email_verified": true,
		"name":           "Player One",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestGoogleVerify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newKeyServer(t, "k1", key)

	v := NewGoogleVerifier("client-123")
	v.CertsURL = srv.URL

	info, err := v.Verify(context.Background(), sign(t, key, "k1", baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", info.Email)
	assert.Equal(t, "google-sub", info.Subject)
	assert.Equal(t, "Player One", info.Name)
}

func TestGoogleVerifyRejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newKeyServer(t, "k1", key)

	v := NewGoogleVerifier("client-123")
	v.CertsURL = srv.URL
	ctx := context.Background()

	wrongAud := baseClaims()
	wrongAud["aud"] = "someone-else"
	_, err = v.Verify(ctx, sign(t, key, "k1", wrongAud))
	assert.ErrorContains(t, err, "audience")

	wrongIss := baseClaims()
	wrongIss["iss"] = "https://evil.example.com"
	_, err = v.Verify(ctx, sign(t, key, "k1", wrongIss))
	assert.ErrorContains(t, err, "issuer")

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err = v.Verify(ctx, sign(t, key, "k1", expired))
	assert.Error(t, err)

	_, err = v.Verify(ctx, sign(t, other, "k1", baseClaims()))
	assert.Error(t, err, "signed by an unknown key")

	_, err = v.Verify(ctx, sign(t, key, "k2", baseClaims()))
	assert.ErrorContains(t, err, "no matching")

	_, err = NewGoogleVerifier("").Verify(ctx, "x.y.z")
	assert.Error(t, err)
}
