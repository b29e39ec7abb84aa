package middleware

import (
	"net/http"

	"roaddarts/models"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != models.RoleAdmin {
			utils.JSONError(c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}
