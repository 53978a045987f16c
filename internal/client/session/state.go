package session

import (
	"time"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
)

// Status is the authentication state of the session.
type Status int

const (
	// StatusUnknown is the state before Bootstrap has run.
	StatusUnknown Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is what the client knows about the signed-in user, taken from the
// access token claims.
type Identity struct {
	UserID    string
	Username  string
	Role      claims.Role
	ExpiresAt time.Time
}

// Snapshot is a consistent view of the session. Identity is set only when
// Status is StatusAuthenticated.
type Snapshot struct {
	Status   Status
	Identity *Identity
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the role of the signed-in user, empty when anonymous.
func (s Snapshot) Role() claims.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Role
}

func identityFrom(c *claims.Claims) *Identity {
	return &Identity{
		UserID:    c.UserID.String(),
		Username:  c.Username,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAtTime(),
	}
}
