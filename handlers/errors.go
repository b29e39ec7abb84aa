package handlers

import (
	"errors"
	"net/http"

	"roaddarts/services/analytics"
	"roaddarts/services/listing"
	"roaddarts/services/review"
	"roaddarts/services/search"
	"roaddarts/services/subscription"
	"roaddarts/services/user"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	var inputErr *search.InputError
	var validationErr *utils.ValidationError
	switch {
	case errors.As(err, &inputErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, listing.ErrNotFound), errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, listing.ErrMediaNotFound), errors.Is(err, subscription.ErrNoSubscription),
		errors.Is(err, subscription.ErrNotActive), errors.Is(err, subscription.ErrPriceNotFound),
		errors.Is(err, subscription.ErrSessionNotFound),
		errors.Is(err, analytics.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, listing.ErrForbidden), errors.Is(err, listing.ErrLimitReached):
		return http.StatusForbidden
	case errors.Is(err, listing.ErrNameTaken), errors.Is(err, review.ErrDuplicateReview),
		errors.Is(err, user.ErrAccountExists), errors.Is(err, user.ErrAlreadyVerified):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrGoogleAccount),
		errors.Is(err, user.ErrInvalidToken), errors.Is(err, review.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, listing.ErrInvalidMedia), errors.Is(err, listing.ErrTooManyImages):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Server errors are logged and
// their details withheld; validation failures include the offending fields.
func respondError(c *gin.Context, err error, serverMessage string) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		getLogger(c).Error(serverMessage, zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, serverMessage, nil)
		return
	}
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		utils.JSONError(c, status, "Validation failed", validationErr.Fields)
		return
	}
	utils.JSONError(c, status, err.Error(), nil)
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
}
