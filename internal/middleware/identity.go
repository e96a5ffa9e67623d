package middleware

// identity.go extracts the caller's opaque user identifier from the
// validated token stored in the Echo context.  The identity provider's
// tokens do not reliably carry the standard "sub" claim, so extraction
// walks a fixed fallback chain of named claims in priority order and
// fails with a typed error when none yields a non-blank value.

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ErrNoIdentity indicates that no usable user identifier could be
// extracted from the token claims.  Handlers translate it into a 401.
var ErrNoIdentity = errors.New("no user identity in token claims")

// identityClaims is the ordered fallback chain tried when extracting
// the user id.
var identityClaims = []string{"sub", "preferred_username", "email"}

// UserID returns the opaque identifier of the authenticated caller.
// The value is a claim from the external identity token, not a
// reference into any local user table.
func UserID(c echo.Context) (string, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", ErrNoIdentity
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoIdentity
	}
	for _, name := range identityClaims {
		if v, ok := claims[name].(string); ok && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", ErrNoIdentity
}
