package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobmatchhub/internal/cache"
	"jobmatchhub/internal/config"
	"jobmatchhub/internal/contextutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRateLimitConfig() *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled:       true,
		APIRequests:   3,
		APIWindow:     time.Minute,
		AuthRequests:  2,
		AuthWindow:    time.Minute,
		ApplyRequests: 1,
		ApplyWindow:   time.Hour,
	}
}

func newTestRateLimiter(t *testing.T, cfg *config.RateLimitConfig) *RateLimiter {
	t.Helper()
	c := cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return NewRateLimiter(c, cfg, zap.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := newTestRateLimiter(t, testRateLimitConfig())
	h := rl.LimitAPI(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	// Headers reflect the count on the first hit of a fresh window
	rl2 := newTestRateLimiter(t, testRateLimitConfig())
	rec := doRequest(rl2.LimitAPI(okHandler()), "10.0.0.1:1234")
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := newTestRateLimiter(t, testRateLimitConfig())
	h := rl.LimitAuth(okHandler())

	for i := 0; i < 2; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestRateLimiterKeysByClient(t *testing.T) {
	rl := newTestRateLimiter(t, testRateLimitConfig())
	h := rl.LimitApply(okHandler())

	t.Run("different IPs get separate buckets", func(t *testing.T) {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(h, "10.0.0.1:5678")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "same IP, different port")

		rec = doRequest(h, "10.0.0.2:1234")
		assert.Equal(t, http.StatusOK, rec.Code, "different IP gets its own bucket")
	})

	t.Run("authenticated users are keyed by user ID", func(t *testing.T) {
		send := func(userID int64) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/1/applications", nil)
			req.RemoteAddr = "10.9.9.9:1234"
			req = req.WithContext(contextutils.WithUserID(req.Context(), userID))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		require.Equal(t, http.StatusOK, send(41).Code)
		assert.Equal(t, http.StatusTooManyRequests, send(41).Code)
		// A different user behind the same IP is not affected
		assert.Equal(t, http.StatusOK, send(42).Code)
	})
}

func TestRateLimiterDisabled(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.Enabled = false
	rl := newTestRateLimiter(t, cfg)
	h := rl.LimitAuth(okHandler())

	for i := 0; i < 10; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	// No counters touched, so no headers either
	rec := doRequest(h, "10.0.0.1:1234")
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

// brokenCache always fails so the fail-open path can be exercised
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) (interface{}, bool) { return nil, false }
func (brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Delete(ctx context.Context, key string) error { return errors.New("cache down") }
func (brokenCache) Exists(ctx context.Context, key string) bool  { return false }
func (brokenCache) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return 0, errors.New("cache down")
}
func (brokenCache) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, errors.New("cache down")
}
func (brokenCache) Clear(ctx context.Context) error  { return errors.New("cache down") }
func (brokenCache) Health(ctx context.Context) error { return errors.New("cache down") }
func (brokenCache) Close() error                     { return nil }

func TestRateLimiterFailsOpenOnCacheError(t *testing.T) {
	rl := NewRateLimiter(brokenCache{}, testRateLimitConfig(), zap.NewNop())
	h := rl.LimitAuth(okHandler())

	for i := 0; i < 5; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
