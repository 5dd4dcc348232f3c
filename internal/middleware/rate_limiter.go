package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"jobmatchhub/internal/cache"
	"jobmatchhub/internal/config"
	"jobmatchhub/internal/contextutils"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RATE LIMITING MIDDLEWARE
// ===============================

// RateLimiter enforces fixed-window limits per client and endpoint class.
// Counters live in the cache so limits hold across instances when Redis
// backs it.
type RateLimiter struct {
	cache  cache.Cache
	config *config.RateLimitConfig
	logger *zap.Logger
}

// NewRateLimiter creates a rate limiter over the shared cache
func NewRateLimiter(c cache.Cache, cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cache:  c,
		config: cfg,
		logger: logger,
	}
}

// LimitAPI applies the general API limit
func (rl *RateLimiter) LimitAPI(next http.Handler) http.Handler {
	return rl.limit("api", rl.config.APIRequests, rl.config.APIWindow, next)
}

// LimitAuth applies the stricter limit for login, registration, and
// password reset attempts
func (rl *RateLimiter) LimitAuth(next http.Handler) http.Handler {
	return rl.limit("auth", rl.config.AuthRequests, rl.config.AuthWindow, next)
}

// LimitApply applies the limit for application submissions
func (rl *RateLimiter) LimitApply(next http.Handler) http.Handler {
	return rl.limit("apply", rl.config.ApplyRequests, rl.config.ApplyWindow, next)
}

func (rl *RateLimiter) limit(class string, maxRequests int, window time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled || maxRequests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.counterKey(class, r)
		count, err := rl.cache.Increment(r.Context(), key, 1, window)
		if err != nil {
			// Fail open so a cache outage does not take the API down
			rl.logger.Warn("Rate limit counter unavailable",
				zap.String("class", class),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			retryAfter := window
			if ttl, err := rl.cache.GetTTL(r.Context(), key); err == nil && ttl > 0 {
				retryAfter = ttl
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))

			rl.logger.Warn("Rate limit exceeded",
				zap.String("class", class),
				zap.String("client", rl.clientIdentity(r)),
				zap.Int64("count", count),
				zap.Int("limit", maxRequests),
			)
			response.QuickError(w, r, services.NewRateLimitError(
				"too many requests, please try again later",
				map[string]interface{}{"retry_after_seconds": int(retryAfter.Seconds())},
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// counterKey buckets counters by authenticated user when possible,
// falling back to the client IP for anonymous traffic
func (rl *RateLimiter) counterKey(class string, r *http.Request) string {
	return fmt.Sprintf("ratelimit:%s:%s", class, rl.clientIdentity(r))
}

func (rl *RateLimiter) clientIdentity(r *http.Request) string {
	if userID := contextutils.GetUserID(r.Context()); userID != 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	return "ip:" + getClientIP(r)
}
