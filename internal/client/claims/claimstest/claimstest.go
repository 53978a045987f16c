// Package claimstest mints access tokens for tests.
package claimstest

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const signingKey = "test-signing-key"

// Mint returns a signed token carrying {user_id, username, role, exp}.
func Mint(t testing.TB, userID int, username string, role claims.Role, exp time.Time) string {
	t.Helper()
	return MintClaims(t, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     string(role),
		"exp":      exp.Unix(),
	})
}

// MintClaims signs arbitrary claims, for malformed-payload cases.
func MintClaims(t testing.TB, c jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return tok
}
