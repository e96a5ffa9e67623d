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

func contextWithClaims(claims jwt.MapClaims) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if claims != nil {
		c.Set("user", &jwt.Token{Claims: claims})
	}
	return c
}

func TestUserID_FallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{
			name:   "sub wins over everything",
			claims: jwt.MapClaims{"sub": "u-1", "preferred_username": "alice", "email": "a@example.com"},
			want:   "u-1",
		},
		{
			name:   "preferred_username when sub is blank",
			claims: jwt.MapClaims{"sub": "  ", "preferred_username": "alice", "email": "a@example.com"},
			want:   "alice",
		},
		{
			name:   "email as last resort",
			claims: jwt.MapClaims{"email": "a@example.com"},
			want:   "a@example.com",
		},
		{
			name:   "non-string sub is skipped",
			claims: jwt.MapClaims{"sub": 42, "email": "a@example.com"},
			want:   "a@example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := middleware.UserID(contextWithClaims(tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserID_NoIdentity(t *testing.T) {
	// All claims blank.
	_, err := middleware.UserID(contextWithClaims(jwt.MapClaims{"sub": "", "preferred_username": " "}))
	assert.ErrorIs(t, err, middleware.ErrNoIdentity)

	// No token in the context at all.
	_, err = middleware.UserID(contextWithClaims(nil))
	assert.ErrorIs(t, err, middleware.ErrNoIdentity)
}
