// Package common defines shared constants and sentinel errors used across
// client layers of ridegate. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrMalformedToken: a token is present but cannot be decoded into the
	// expected claims.
	ErrMalformedToken = errors.New("malformed token")

	// ErrSessionExpired: the stored access token is expired (or unreadable)
	// and the session was terminated before the request left the client.
	ErrSessionExpired = errors.New("session expired")
)
