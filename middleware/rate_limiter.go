package middleware

import (
	"net/http"
	"sync"
	"time"

	"roaddarts/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds one limiter per client IP.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	every    rate.Limit
	burst    int
}

func newRateLimiterStore(perMinute, burst int) *rateLimiterStore {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(s.every, s.burst)
		s.limiters[ip] = limiter
	}
	return limiter
}

func limit(store *rateLimiterStore, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			utils.JSONError(c, http.StatusTooManyRequests, message, nil)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware allows perMinute requests per IP with an equal burst.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return limit(newRateLimiterStore(perMinute, perMinute), "Rate limit exceeded. Try again later.")
}

// LoginRateLimitMiddleware throttles credential endpoints to 5 attempts a minute per IP.
func LoginRateLimitMiddleware() gin.HandlerFunc {
	return limit(newRateLimiterStore(5, 5), "Too many attempts. Try again in a minute.")
}
