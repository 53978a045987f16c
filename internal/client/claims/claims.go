// Package claims decodes the identity claims carried by access tokens.
//
// Tokens are decoded without signature verification. The client holds no key
// material; claims only pick what to show and detect expiry before a request
// is sent. A forged role claim gets past the route guard but not past the
// API server, which verifies every token.
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access token payload: {user_id, username, role, exp}.
type Claims struct {
	jwt.RegisteredClaims
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// UserID accepts both JSON numbers and strings; the backend issues integers.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("user_id %s is not an integer", n)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string { return string(id) }

// ExpiresAtTime returns exp as time.Time, zero when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired is true when exp is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAtTime().After(now)
}

// Decoder turns a token string into Claims.
type Decoder interface {
	Decode(token string) (*Claims, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(token string) (*Claims, error)

func (f DecoderFunc) Decode(token string) (*Claims, error) { return f(token) }

// Unverified is the default Decoder; see Decode.
var Unverified Decoder = DecoderFunc(Decode)

var parser = jwt.NewParser()

// Decode parses a three-part token without checking its signature and
// validates that every claim the client relies on is present. All failures
// wrap common.ErrMalformedToken.
func Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", common.ErrMalformedToken)
	}

	c := &Claims{}
	if _, _, err := parser.ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}

	switch {
	case c.UserID == "":
		return nil, fmt.Errorf("%w: missing user_id", common.ErrMalformedToken)
	case c.Username == "":
		return nil, fmt.Errorf("%w: missing username", common.ErrMalformedToken)
	case c.Role == "":
		return nil, fmt.Errorf("%w: missing role", common.ErrMalformedToken)
	case !c.Role.IsValid():
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrMalformedToken, string(c.Role))
	case c.ExpiresAt == nil:
		return nil, fmt.Errorf("%w: missing exp", common.ErrMalformedToken)
	}

	return c, nil
}
