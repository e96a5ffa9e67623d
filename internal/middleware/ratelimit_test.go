package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiapp/ticket-reservation/internal/config"
	"github.com/archiapp/ticket-reservation/internal/middleware"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled: true,
		Limit:   5,
		Window:  time.Minute,
		Prefix:  "rl",
	}
}

func limitedRequest(t *testing.T, mws []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"ok": true}) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations")
	require.NoError(t, h(c))
	return rec
}

// Running after JWTAuth, the limiter keys its bucket by the user id
// from the verified token, so two users never share a counter.
func TestRateLimit_KeysByUserAfterAuth(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := limiterConfig()
	mock.Regexp().ExpectIncr(`rl:u-1:/v1/reservations:\d+`).SetVal(1)
	mock.Regexp().ExpectExpire(`rl:u-1:/v1/reservations:\d+`, cfg.Window).SetVal(true)

	raw := signedToken(t, testSecret, jwt.MapClaims{"sub": "u-1"})
	rec := limitedRequest(t, []echo.MiddlewareFunc{
		middleware.JWTAuth(testSecret),
		middleware.RateLimit(cfg, rdb),
	}, "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Without a verified token in the context the bucket falls back to the
// client IP.
func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := limiterConfig()
	mock.Regexp().ExpectIncr(`rl:ip:192\.0\.2\.1:/v1/reservations:\d+`).SetVal(1)
	mock.Regexp().ExpectExpire(`rl:ip:192\.0\.2\.1:/v1/reservations:\d+`, cfg.Window).SetVal(true)

	rec := limitedRequest(t, []echo.MiddlewareFunc{middleware.RateLimit(cfg, rdb)}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := limiterConfig()
	mock.Regexp().ExpectIncr(`rl:ip:.+`).SetVal(int64(cfg.Limit) + 1)

	rec := limitedRequest(t, []echo.MiddlewareFunc{middleware.RateLimit(cfg, rdb)}, "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(`rl:.+`).SetErr(errors.New("connection refused"))

	rec := limitedRequest(t, []echo.MiddlewareFunc{middleware.RateLimit(limiterConfig(), rdb)}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_PassThrough(t *testing.T) {
	// Disabled by config.
	cfg := limiterConfig()
	cfg.Enabled = false
	rdb, _ := redismock.NewClientMock()
	rec := limitedRequest(t, []echo.MiddlewareFunc{middleware.RateLimit(cfg, rdb)}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	// No Redis client at all.
	rec = limitedRequest(t, []echo.MiddlewareFunc{middleware.RateLimit(limiterConfig(), nil)}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
