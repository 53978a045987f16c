// Package interceptor attaches the stored access token to outbound calls and
// ends the session when that token can no longer be used.
//
// The token is read from the store on every call and never cached, so a
// login or logout is picked up by the very next request.
package interceptor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/navigation"
	"github.com/dmitrijs2005/ridegate/internal/client/tokenstore"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Terminator ends the session. session.Manager implements it.
type Terminator interface {
	Logout(ctx context.Context) error
}

// TerminatorFunc adapts a function to Terminator.
type TerminatorFunc func(ctx context.Context) error

func (f TerminatorFunc) Logout(ctx context.Context) error { return f(ctx) }

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) { i.now = now }
}

// WithDecoder replaces claims.Unverified.
func WithDecoder(d claims.Decoder) Option {
	return func(i *Interceptor) { i.decoder = d }
}

// Interceptor is the credential policy shared by the HTTP transport and the
// gRPC client interceptor.
type Interceptor struct {
	store      tokenstore.Store
	terminator Terminator
	nav        navigation.Navigator
	log        logging.Logger
	now        func() time.Time
	decoder    claims.Decoder
}

func New(store tokenstore.Store, terminator Terminator, nav navigation.Navigator, log logging.Logger, opts ...Option) *Interceptor {
	i := &Interceptor{
		store:      store,
		terminator: terminator,
		nav:        nav,
		log:        log.With("component", "interceptor"),
		now:        time.Now,
		decoder:    claims.Unverified,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Authorize returns the token to send, or "" when there is no session. A
// malformed or expired token ends the session, sends the client to the login
// area and yields an error wrapping common.ErrSessionExpired.
func (i *Interceptor) Authorize(ctx context.Context) (string, error) {
	token, ok, err := i.store.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		return "", nil
	}

	c, err := i.decoder.Decode(token)
	if err != nil {
		i.log.Warn(ctx, "stored token is unreadable", "error", err)
		return "", i.expire(ctx)
	}
	if c.Expired(i.now()) {
		i.log.Info(ctx, "access token expired", "username", c.Username, "expired_at", c.ExpiresAtTime())
		return "", i.expire(ctx)
	}
	return token, nil
}

func (i *Interceptor) expire(ctx context.Context) error {
	if err := i.terminator.Logout(ctx); err != nil {
		i.log.Error(ctx, "failed to end expired session", "error", err)
	}
	i.nav.Navigate(common.LoginPath, true)
	return fmt.Errorf("authorize request: %w", common.ErrSessionExpired)
}

// RoundTripper wraps next. Requests made with an expired session never reach
// next.
func (i *Interceptor) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{i: i, next: next}
}

type transport struct {
	i    *Interceptor
	next http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.i.Authorize(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	if token == "" {
		return t.next.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return t.next.RoundTrip(r)
}

// authorizationMetadataKey is the gRPC form of the Authorization header.
const authorizationMetadataKey = "authorization"

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(authorizationMetadataKey, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor applies the same policy to gRPC calls.
func (i *Interceptor) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token, err := i.Authorize(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			ctx = withAccessToken(ctx, token)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
