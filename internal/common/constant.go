// Package common contains shared constants and sentinel errors used across
// ridegate client components.
package common

// Storage keys of the persisted credential.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// AuthorizationHeaderName is the HTTP header (and lower-cased gRPC metadata
// key) used to carry the access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// LoginPath is the area every unauthenticated or unauthorized navigation
// ends up in.
const LoginPath = "/login"
