package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiapp/ticket-reservation/internal/middleware"
)

const testSecret = "unit-test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func runProtected(t *testing.T, mws []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
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
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{"sub": "u-1", "role": "CUSTOMER"})
	rec := runProtected(t, []echo.MiddlewareFunc{middleware.JWTAuth(testSecret)}, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	mw := []echo.MiddlewareFunc{middleware.JWTAuth(testSecret)}

	// No header at all.
	rec := runProtected(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong scheme.
	rec = runProtected(t, mw, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed with a different secret.
	forged := signedToken(t, "other-secret", jwt.MapClaims{"sub": "u-1"})
	rec = runProtected(t, mw, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	adminOnly := []echo.MiddlewareFunc{
		middleware.JWTAuth(testSecret),
		middleware.RequireRole("ADMIN"),
	}

	admin := signedToken(t, testSecret, jwt.MapClaims{"sub": "u-1", "role": "ADMIN"})
	rec := runProtected(t, adminOnly, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	customer := signedToken(t, testSecret, jwt.MapClaims{"sub": "u-2", "role": "CUSTOMER"})
	rec = runProtected(t, adminOnly, "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	noRole := signedToken(t, testSecret, jwt.MapClaims{"sub": "u-3"})
	rec = runProtected(t, adminOnly, "Bearer "+noRole)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
