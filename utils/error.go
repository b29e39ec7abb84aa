package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))

				JSONError(c, http.StatusInternalServerError, "Internal Server Error", nil)
			}
		}()
		c.Next()
	}
}

// JSONError sends an ErrorResponse and aborts the chain. fields lists per-field
// validation failures and may be nil.
func JSONError(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Fields: fields})
}
