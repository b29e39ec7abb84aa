package middleware

import (
	"net/http"
	"strings"

	"roaddarts/models"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// accessToken reads the access token from the auth cookie, falling back to a
// Bearer Authorization header.
func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(utils.AccessCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// JWTAuthMiddleware rejects requests without a valid access token.
func JWTAuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := accessToken(c)
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Missing access token", nil)
			return
		}
		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// ActorFrom returns the caller identified by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) models.Actor {
	return models.Actor{
		UserID: c.GetString(ctxUserID),
		Email:  c.GetString(ctxEmail),
		Role:   c.GetString(ctxRole),
	}
}
