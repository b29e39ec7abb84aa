package utils

import "time"

// Redis key prefixes on the auth database.
const (
	RefreshTokenPrefix = "refresh:"
	VerifyTokenPrefix  = "verify:"
	ResetTokenPrefix   = "reset:"
)

const (
	VerifyTokenTTL = 24 * time.Hour
	ResetTokenTTL  = time.Hour
)

// Auth cookie names.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)
