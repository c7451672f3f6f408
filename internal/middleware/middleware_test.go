package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridestats/stridestats/internal/middleware"
	"github.com/stridestats/stridestats/internal/telemetry/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestPanicRecovery(t *testing.T) {
	manager := metrics.NewTestManager()
	handler := middleware.PanicRecovery(manager)(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) {
			panic("boom")
		},
	))

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/dashboard", nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, req)
	})
}

func TestCors_AllowedOrigin(t *testing.T) {
	handler := middleware.Cors()(okHandler())

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/dashboard", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors_UnknownOrigin(t *testing.T) {
	handler := middleware.Cors()(okHandler())

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/dashboard", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	handler.ServeHTTP(rec, req)
	// the request is still served, just without the CORS headers
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors_Preflight(t *testing.T) {
	handler := middleware.Cors()(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) {
			t.Fatal("preflight must not reach the handler")
		},
	))

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("OPTIONS", "/dashboard/refresh", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

type stubRateLimiter struct {
	allowed    int
	retryAfter time.Duration
	err        error
}

func (s *stubRateLimiter) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &redis_rate.Result{Allowed: s.allowed, RetryAfter: s.retryAfter}, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &stubRateLimiter{allowed: 1}
	handler := middleware.RateLimit(limiter, "dashboard-refresh", 5)(okHandler())

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/dashboard/refresh", nil)
	require.NoError(t, err)

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// budget exhausted
	limiter.allowed = 0
	limiter.retryAfter = 30 * time.Second

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "retry after")

	// limiter backend down
	limiter.err = errors.New("redis gone")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
