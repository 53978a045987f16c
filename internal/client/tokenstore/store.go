package tokenstore

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/ridegate/internal/common"
)

// Store is a durable string key/value store for the session credential.
// Values are opaque; nothing is validated. Get reports absence with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// BatchStore is implemented by backends that can write several keys in one
// transaction.
type BatchStore interface {
	Store
	SetMany(ctx context.Context, values map[string]string) error
	ClearMany(ctx context.Context, keys ...string) error
}

// ClosableStore is a Store that owns an underlying resource.
type ClosableStore interface {
	Store
	io.Closer
}

// Credential is the access/refresh token pair issued at login.
type Credential struct {
	Access  string
	Refresh string
}

// SaveCredential persists both tokens, atomically when s supports batches.
func SaveCredential(ctx context.Context, s Store, c Credential) error {
	if bs, ok := s.(BatchStore); ok {
		return bs.SetMany(ctx, map[string]string{
			common.AccessTokenKey:  c.Access,
			common.RefreshTokenKey: c.Refresh,
		})
	}

	if err := s.Set(ctx, common.AccessTokenKey, c.Access); err != nil {
		return err
	}
	return s.Set(ctx, common.RefreshTokenKey, c.Refresh)
}

// LoadCredential reads both tokens. ok is false when no access token is
// stored.
func LoadCredential(ctx context.Context, s Store) (Credential, bool, error) {
	access, ok, err := s.Get(ctx, common.AccessTokenKey)
	if err != nil || !ok {
		return Credential{}, false, err
	}

	refresh, _, err := s.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return Credential{}, false, err
	}

	return Credential{Access: access, Refresh: refresh}, true, nil
}

// ClearCredential deletes both tokens. Clearing absent keys is not an error.
func ClearCredential(ctx context.Context, s Store) error {
	if bs, ok := s.(BatchStore); ok {
		return bs.ClearMany(ctx, common.AccessTokenKey, common.RefreshTokenKey)
	}

	var firstErr error
	for _, k := range []string{common.AccessTokenKey, common.RefreshTokenKey} {
		if err := s.Clear(ctx, k); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear %s: %w", k, err)
		}
	}
	return firstErr
}
