package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/claims/claimstest"
	"github.com/dmitrijs2005/ridegate/internal/client/client"
	"github.com/dmitrijs2005/ridegate/internal/client/models"
	"github.com/dmitrijs2005/ridegate/internal/client/tokenstore"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// ---- fakes ----

type fakeAPI struct {
	mu sync.Mutex

	TokenRet models.TokenPair
	TokenErr error

	RegisterErr error

	LastUsername, LastPassword string
	Drivers                    []models.DriverRegistration
	Passengers                 []models.PassengerRegistration
}

func (f *fakeAPI) ObtainToken(_ context.Context, username, password string) (models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUsername, f.LastPassword = username, password
	return f.TokenRet, f.TokenErr
}

func (f *fakeAPI) RegisterDriver(_ context.Context, d models.DriverRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Drivers = append(f.Drivers, d)
	return f.RegisterErr
}

func (f *fakeAPI) RegisterPassenger(_ context.Context, p models.PassengerRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Passengers = append(f.Passengers, p)
	return f.RegisterErr
}

// brokenStore fails the selected operations. It has no batch methods, so
// the credential helpers go key by key through Set and Clear.
type brokenStore struct {
	inner                    *tokenstore.MemoryStore
	GetErr, SetErr, ClearErr error
}

func (b *brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	if b.GetErr != nil {
		return "", false, b.GetErr
	}
	return b.inner.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key, value string) error {
	if b.SetErr != nil {
		return b.SetErr
	}
	return b.inner.Set(ctx, key, value)
}

func (b *brokenStore) Clear(ctx context.Context, key string) error {
	if b.ClearErr != nil {
		return b.ClearErr
	}
	return b.inner.Clear(ctx, key)
}

// ---- helpers ----

func newManager(t *testing.T, store tokenstore.Store, api client.Client) *Manager {
	t.Helper()
	return New(store, api, logging.Discard(), WithClock(func() time.Time { return now }))
}

func seed(t *testing.T, s tokenstore.Store, access, refresh string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), common.AccessTokenKey, access))
	require.NoError(t, s.Set(context.Background(), common.RefreshTokenKey, refresh))
}

func requireEmpty(t *testing.T, s tokenstore.Store) {
	t.Helper()
	for _, k := range []string{common.AccessTokenKey, common.RefreshTokenKey} {
		_, ok, err := s.Get(context.Background(), k)
		require.NoError(t, err)
		require.False(t, ok, "%s must be cleared", k)
	}
}

func record(m *Manager) *[]Snapshot {
	var got []Snapshot
	m.Subscribe(func(s Snapshot) { got = append(got, s) })
	return &got
}

// ---- Bootstrap ----

func TestNew_StartsUnknown(t *testing.T) {
	m := newManager(t, tokenstore.NewMemoryStore(), &fakeAPI{})
	s := m.Snapshot()
	assert.Equal(t, StatusUnknown, s.Status)
	assert.Nil(t, s.Identity)
	assert.Equal(t, "unknown", s.Status.String())
}

func TestBootstrap_ValidToken(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	exp := now.Add(time.Hour)
	seed(t, store, claimstest.Mint(t, 42, "kofi", claims.RoleDriver, exp), "R")

	m := newManager(t, store, &fakeAPI{})
	got := record(m)
	require.NoError(t, m.Bootstrap(context.Background()))

	s := m.Snapshot()
	require.True(t, s.Authenticated())
	assert.Equal(t, "42", s.Identity.UserID)
	assert.Equal(t, "kofi", s.Identity.Username)
	assert.Equal(t, claims.RoleDriver, s.Identity.Role)
	assert.True(t, exp.Equal(s.Identity.ExpiresAt))
	assert.Equal(t, claims.RoleDriver, s.Role())
	require.Len(t, *got, 1)
	assert.Equal(t, StatusAuthenticated, (*got)[0].Status)

	refresh, ok, err := store.Get(context.Background(), common.RefreshTokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "R", refresh)
}

func TestBootstrap_ClearsStoreWhenTokenUnusable(t *testing.T) {
	tests := []struct {
		name   string
		access func(t *testing.T) string
	}{
		{"not a token", func(*testing.T) string { return "abc.def" }},
		{"garbage parts", func(*testing.T) string { return "a.b.c" }},
		{"unknown role", func(t *testing.T) string {
			return claimstest.Mint(t, 1, "x", claims.Role("SUPERUSER"), now.Add(time.Hour))
		}},
		{"expired a second ago", func(t *testing.T) string {
			return claimstest.Mint(t, 1, "x", claims.RolePassenger, now.Add(-time.Second))
		}},
		{"expires exactly now", func(t *testing.T) string {
			return claimstest.Mint(t, 1, "x", claims.RolePassenger, now)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tokenstore.NewMemoryStore()
			seed(t, store, tt.access(t), "R")

			m := newManager(t, store, &fakeAPI{})
			require.NoError(t, m.Bootstrap(context.Background()))

			s := m.Snapshot()
			assert.Equal(t, StatusAnonymous, s.Status)
			assert.Nil(t, s.Identity)
			requireEmpty(t, store)
		})
	}
}

func TestBootstrap_NoTokenClearsLeftoverRefresh(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), common.RefreshTokenKey, "stale"))

	m := newManager(t, store, &fakeAPI{})
	got := record(m)
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
	requireEmpty(t, store)
	require.Len(t, *got, 1)
	assert.Equal(t, StatusAnonymous, (*got)[0].Status)
}

func TestBootstrap_ReadErrorLeavesAnonymous(t *testing.T) {
	boom := errors.New("disk on fire")
	store := &brokenStore{inner: tokenstore.NewMemoryStore(), GetErr: boom}

	m := newManager(t, store, &fakeAPI{})
	err := m.Bootstrap(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	exp := now.Add(30 * time.Minute)
	access := claimstest.Mint(t, 7, "ama", claims.RoleAdmin, exp)
	api := &fakeAPI{TokenRet: models.TokenPair{Access: access, Refresh: "R1"}}

	m := newManager(t, store, api)
	require.NoError(t, m.Bootstrap(context.Background()))
	got := record(m)

	id, err := m.Login(context.Background(), "ama", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "7", id.UserID)
	assert.Equal(t, "ama", id.Username)
	assert.Equal(t, claims.RoleAdmin, id.Role)
	assert.True(t, exp.Equal(id.ExpiresAt))
	assert.Equal(t, "ama", api.LastUsername)
	assert.Equal(t, "s3cret", api.LastPassword)

	cred, ok, err := tokenstore.LoadCredential(context.Background(), store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tokenstore.Credential{Access: access, Refresh: "R1"}, cred)

	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].Authenticated())
	assert.Equal(t, StatusAuthenticated, m.Snapshot().Status)

	// the returned identity is a copy
	id.Role = claims.RoleDriver
	assert.Equal(t, claims.RoleAdmin, m.Snapshot().Role())
}

func TestLogin_OverwritesPreviousSession(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	seed(t, store, claimstest.Mint(t, 1, "old", claims.RolePassenger, now.Add(time.Hour)), "old-refresh")

	newAccess := claimstest.Mint(t, 2, "new", claims.RoleDriver, now.Add(time.Hour))
	m := newManager(t, store, &fakeAPI{TokenRet: models.TokenPair{Access: newAccess, Refresh: "new-refresh"}})
	require.NoError(t, m.Bootstrap(context.Background()))

	_, err := m.Login(context.Background(), "new", "pw")
	require.NoError(t, err)

	cred, _, err := tokenstore.LoadCredential(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, tokenstore.Credential{Access: newAccess, Refresh: "new-refresh"}, cred)
	assert.Equal(t, "new", m.Snapshot().Identity.Username)
}

func TestLogin_FailuresLeaveStateAndStoreUntouched(t *testing.T) {
	rejected := &client.APIError{Kind: client.ErrCredentialsRejected, Status: 401, Message: "No active account found with the given credentials"}

	tests := []struct {
		name    string
		api     *fakeAPI
		expired bool
		wantIs  error
		wantMsg string
	}{
		{
			name:    "rejected by server",
			api:     &fakeAPI{TokenErr: rejected},
			wantIs:  client.ErrCredentialsRejected,
			wantMsg: "No active account found with the given credentials",
		},
		{
			name:    "server unreachable",
			api:     &fakeAPI{TokenErr: &client.APIError{Kind: client.ErrUnavailable, Message: client.MsgLoginFailed, Err: errors.New("refused")}},
			wantIs:  client.ErrUnavailable,
			wantMsg: client.MsgLoginFailed,
		},
		{
			name:    "undecodable token",
			api:     &fakeAPI{TokenRet: models.TokenPair{Access: "not-a-jwt", Refresh: "R"}},
			wantIs:  common.ErrMalformedToken,
			wantMsg: client.MsgLoginFailed,
		},
		{
			name:    "already expired token",
			api:     &fakeAPI{TokenRet: models.TokenPair{Refresh: "R"}},
			expired: true,
			wantIs:  common.ErrSessionExpired,
			wantMsg: client.MsgLoginFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expired {
				tt.api.TokenRet.Access = claimstest.Mint(t, 3, "late", claims.RoleDriver, now.Add(-time.Minute))
			}

			store := tokenstore.NewMemoryStore()
			m := newManager(t, store, tt.api)
			require.NoError(t, m.Bootstrap(context.Background()))
			got := record(m)

			id, err := m.Login(context.Background(), "u", "p")
			require.Error(t, err)
			assert.Nil(t, id)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantMsg, client.UserMessage(err, client.MsgLoginFailed))

			assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
			assert.Empty(t, *got)
			requireEmpty(t, store)
		})
	}
}

func TestLogin_StoreWriteFailure(t *testing.T) {
	boom := errors.New("read-only filesystem")
	store := &brokenStore{inner: tokenstore.NewMemoryStore(), SetErr: boom}
	access := claimstest.Mint(t, 5, "esi", claims.RolePassenger, now.Add(time.Hour))

	m := newManager(t, store, &fakeAPI{TokenRet: models.TokenPair{Access: access, Refresh: "R"}})
	require.NoError(t, m.Bootstrap(context.Background()))

	_, err := m.Login(context.Background(), "esi", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
}

// ---- Logout ----

func TestLogout_ClearsAndNotifiesOnce(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	seed(t, store, claimstest.Mint(t, 9, "yaw", claims.RoleDriver, now.Add(time.Hour)), "R")

	m := newManager(t, store, &fakeAPI{})
	require.NoError(t, m.Bootstrap(context.Background()))
	got := record(m)

	require.NoError(t, m.Logout(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	requireEmpty(t, store)
	s := m.Snapshot()
	assert.Equal(t, StatusAnonymous, s.Status)
	assert.Nil(t, s.Identity)
	assert.Empty(t, s.Role())
	require.Len(t, *got, 1)
	assert.Equal(t, StatusAnonymous, (*got)[0].Status)
}

func TestLogout_ConcurrentCallsAreSafe(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	seed(t, store, claimstest.Mint(t, 9, "yaw", claims.RoleDriver, now.Add(time.Hour)), "R")

	m := newManager(t, store, &fakeAPI{})
	require.NoError(t, m.Bootstrap(context.Background()))

	var notified atomic.Int32
	m.Subscribe(func(Snapshot) { notified.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Logout(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), notified.Load())
	requireEmpty(t, store)
}

func TestLogout_StoreFailureStillAnonymous(t *testing.T) {
	boom := errors.New("locked")
	store := &brokenStore{inner: tokenstore.NewMemoryStore()}
	seed(t, store.inner, claimstest.Mint(t, 9, "yaw", claims.RoleDriver, now.Add(time.Hour)), "R")

	m := newManager(t, store, &fakeAPI{})
	require.NoError(t, m.Bootstrap(context.Background()))

	store.ClearErr = boom
	err := m.Logout(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
}

// ---- Register ----

func TestRegister_DispatchesByRole(t *testing.T) {
	data := models.DriverRegistration{
		Username: "kwesi", Email: "k@example.com", Password: "pw", Phone: "0244",
		FullName: "Kwesi Boateng", NationalID: "GHA-1", LicenseNumber: "DL-7",
	}

	api := &fakeAPI{}
	m := newManager(t, tokenstore.NewMemoryStore(), api)
	require.NoError(t, m.Bootstrap(context.Background()))
	got := record(m)

	require.NoError(t, m.Register(context.Background(), claims.RoleDriver, data))
	require.NoError(t, m.Register(context.Background(), claims.RolePassenger, data))
	require.NoError(t, m.Register(context.Background(), claims.RoleAdmin, data))

	assert.Equal(t, []models.DriverRegistration{data, data}, api.Drivers, "driver and admin use driver registration")
	assert.Equal(t, []models.PassengerRegistration{data.Passenger()}, api.Passengers)
	assert.Empty(t, *got, "registration never changes the session")
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
}

func TestRegister_ErrorCarriesServerMessage(t *testing.T) {
	api := &fakeAPI{RegisterErr: &client.APIError{
		Kind: client.ErrValidationFailed, Status: 400, Message: "A user with that username already exists.",
	}}
	m := newManager(t, tokenstore.NewMemoryStore(), api)

	err := m.RegisterPassenger(context.Background(), models.PassengerRegistration{Username: "dup"})
	require.ErrorIs(t, err, client.ErrValidationFailed)
	assert.Equal(t, "A user with that username already exists.", client.UserMessage(err, client.MsgRegistrationFailed))

	err = m.RegisterDriver(context.Background(), models.DriverRegistration{Username: "dup"})
	require.ErrorIs(t, err, client.ErrValidationFailed)
}

// ---- Subscribe ----

func TestSubscribe_Unsubscribe(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	access := claimstest.Mint(t, 1, "a", claims.RoleDriver, now.Add(time.Hour))
	m := newManager(t, store, &fakeAPI{TokenRet: models.TokenPair{Access: access}})

	var calls int
	unsubscribe := m.Subscribe(func(Snapshot) { calls++ })
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()
	_, err := m.Login(context.Background(), "a", "p")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSubscribe_CallbackMayReenter(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	access := claimstest.Mint(t, 1, "a", claims.RoleDriver, now.Add(time.Hour))
	m := newManager(t, store, &fakeAPI{TokenRet: models.TokenPair{Access: access, Refresh: "R"}})
	require.NoError(t, m.Bootstrap(context.Background()))

	var seen []Status
	m.Subscribe(func(s Snapshot) {
		seen = append(seen, m.Snapshot().Status)
		if s.Authenticated() {
			assert.NoError(t, m.Logout(context.Background()))
		}
	})

	_, err := m.Login(context.Background(), "a", "p")
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusAuthenticated, StatusAnonymous}, seen)
	requireEmpty(t, store)
}

func TestSubscribe_ReentrantLogoutLeavesNoStaleSnapshot(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	access := claimstest.Mint(t, 1, "a", claims.RoleDriver, now.Add(time.Hour))
	m := newManager(t, store, &fakeAPI{TokenRet: models.TokenPair{Access: access, Refresh: "R"}})
	require.NoError(t, m.Bootstrap(context.Background()))

	m.Subscribe(func(s Snapshot) {
		if s.Authenticated() {
			assert.NoError(t, m.Logout(context.Background()))
		}
	})
	got := record(m)

	_, err := m.Login(context.Background(), "a", "p")
	require.NoError(t, err)

	require.Equal(t, StatusAnonymous, m.Snapshot().Status)
	require.NotEmpty(t, *got)
	last := (*got)[len(*got)-1]
	assert.Equal(t, StatusAnonymous, last.Status, "last delivery must match the manager")
	assert.Nil(t, last.Identity)
	for _, s := range *got {
		assert.False(t, s.Authenticated(), "superseded state must not be delivered")
	}
}

func TestSubscribe_EverySubscriberSeesEachChangeOnce(t *testing.T) {
	access := claimstest.Mint(t, 1, "a", claims.RoleDriver, now.Add(time.Hour))
	m := newManager(t, tokenstore.NewMemoryStore(), &fakeAPI{TokenRet: models.TokenPair{Access: access}})
	first, second := record(m), record(m)

	require.NoError(t, m.Bootstrap(context.Background()))
	_, err := m.Login(context.Background(), "a", "p")
	require.NoError(t, err)
	_, err = m.Login(context.Background(), "a", "p")
	require.NoError(t, err)
	require.NoError(t, m.Logout(context.Background()))

	want := []Status{StatusAnonymous, StatusAuthenticated, StatusAnonymous}
	for _, got := range []*[]Snapshot{first, second} {
		var statuses []Status
		for _, s := range *got {
			statuses = append(statuses, s.Status)
		}
		assert.Equal(t, want, statuses)
	}
}

func TestBootstrap_KeepsSessionWithoutRefreshToken(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	access := claimstest.Mint(t, 5, "esi", claims.RolePassenger, now.Add(time.Hour))
	require.NoError(t, store.Set(context.Background(), common.AccessTokenKey, access))

	m := newManager(t, store, &fakeAPI{})
	require.NoError(t, m.Bootstrap(context.Background()))

	assert.Equal(t, StatusAuthenticated, m.Snapshot().Status)
	cred, ok, err := tokenstore.LoadCredential(context.Background(), store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tokenstore.Credential{Access: access}, cred)
}

func TestWithDecoder(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	seed(t, store, "opaque", "R")

	dec := claims.DecoderFunc(func(token string) (*claims.Claims, error) {
		assert.Equal(t, "opaque", token)
		c := &claims.Claims{UserID: "u-1", Username: "fixture", Role: claims.RolePassenger}
		c.ExpiresAt = jwt.NewNumericDate(now.Add(time.Minute))
		return c, nil
	})

	m := New(store, &fakeAPI{}, logging.Discard(), WithClock(func() time.Time { return now }), WithDecoder(dec))
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, "fixture", m.Snapshot().Identity.Username)
}
