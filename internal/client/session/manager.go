// Package session owns the client-side authentication state: it restores the
// session from the token store at startup, performs login and registration
// against the REST API, and clears credentials on logout.
//
// Manager is the only writer of the token store. Other components read the
// store directly (the request interceptor) or observe the Manager through
// Snapshot and Subscribe (the route guard and the terminal views).
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/client"
	"github.com/dmitrijs2005/ridegate/internal/client/models"
	"github.com/dmitrijs2005/ridegate/internal/client/tokenstore"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDecoder replaces claims.Unverified.
func WithDecoder(d claims.Decoder) Option {
	return func(m *Manager) { m.decoder = d }
}

// Manager tracks the session state. Safe for concurrent use.
type Manager struct {
	store   tokenstore.Store
	api     client.Client
	log     logging.Logger
	now     func() time.Time
	decoder claims.Decoder

	// op serializes store writes with the state change that follows them.
	op sync.Mutex

	mu      sync.RWMutex
	state   Snapshot
	version uint64
	subs    map[int]func(Snapshot)
	nextSub int
}

// update is the outcome of one state write.
type update struct {
	snap    Snapshot
	version uint64
	changed bool
}

// New returns a Manager in StatusUnknown. Call Bootstrap before use.
func New(store tokenstore.Store, api client.Client, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		api:     api,
		log:     log.With("component", "session"),
		now:     time.Now,
		decoder: claims.Unverified,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Bootstrap restores the session from the token store. A missing, malformed
// or expired access token leaves the session anonymous with both tokens
// removed. Read failures also leave it anonymous and are returned.
func (m *Manager) Bootstrap(ctx context.Context) error {
	u, err := m.bootstrap(ctx)
	m.notify(u)
	return err
}

func (m *Manager) bootstrap(ctx context.Context) (update, error) {
	m.op.Lock()
	defer m.op.Unlock()

	cred, ok, err := tokenstore.LoadCredential(ctx, m.store)
	if err != nil {
		return m.set(Snapshot{Status: StatusAnonymous}), fmt.Errorf("restore session: %w", err)
	}

	if !ok {
		return m.reset(ctx, "no stored session")
	}
	if cred.Refresh == "" {
		m.log.Debug(ctx, "stored session has no refresh token")
	}

	c, err := m.decoder.Decode(cred.Access)
	if err != nil {
		m.log.Warn(ctx, "discarding stored token", "error", err)
		return m.reset(ctx, "malformed token")
	}
	if c.Expired(m.now()) {
		m.log.Info(ctx, "stored session expired", "username", c.Username, "expired_at", c.ExpiresAtTime())
		return m.reset(ctx, "expired token")
	}

	u := m.set(Snapshot{Status: StatusAuthenticated, Identity: identityFrom(c)})
	m.log.Info(ctx, "session restored", "username", c.Username, "role", c.Role)
	return u, nil
}

// reset clears stored credentials and makes the session anonymous. The
// caller holds m.op.
func (m *Manager) reset(ctx context.Context, reason string) (update, error) {
	err := tokenstore.ClearCredential(ctx, m.store)
	if err != nil {
		m.log.Error(ctx, "failed to clear credentials", "reason", reason, "error", err)
		err = fmt.Errorf("clear credentials: %w", err)
	}
	u := m.set(Snapshot{Status: StatusAnonymous})
	if u.changed {
		m.log.Debug(ctx, "session is anonymous", "reason", reason)
	}
	return u, err
}

// Login exchanges username and password for a token pair, stores it and
// makes the session authenticated. On any failure the state and the store
// are left as they were; client.UserMessage extracts what to show.
func (m *Manager) Login(ctx context.Context, username, password string) (*Identity, error) {
	pair, err := m.api.ObtainToken(ctx, username, password)
	if err != nil {
		m.log.Info(ctx, "login rejected", "username", username, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	c, err := m.decoder.Decode(pair.Access)
	if err != nil {
		m.log.Error(ctx, "server issued an unreadable token", "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if c.Expired(m.now()) {
		return nil, fmt.Errorf("login: issued token %w", common.ErrSessionExpired)
	}

	u, err := m.persist(ctx, pair, c)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	m.log.Info(ctx, "login succeeded", "username", c.Username, "role", c.Role)
	m.notify(u)

	id := *u.snap.Identity
	return &id, nil
}

func (m *Manager) persist(ctx context.Context, pair models.TokenPair, c *claims.Claims) (update, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := tokenstore.SaveCredential(ctx, m.store, tokenstore.Credential{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return update{}, fmt.Errorf("save credentials: %w", err)
	}
	return m.set(Snapshot{Status: StatusAuthenticated, Identity: identityFrom(c)}), nil
}

// RegisterDriver creates a driver account. The session is not changed.
func (m *Manager) RegisterDriver(ctx context.Context, data models.DriverRegistration) error {
	if err := m.api.RegisterDriver(ctx, data); err != nil {
		return fmt.Errorf("register driver: %w", err)
	}
	m.log.Info(ctx, "driver registered", "username", data.Username)
	return nil
}

// RegisterPassenger creates a passenger account. The session is not changed.
func (m *Manager) RegisterPassenger(ctx context.Context, data models.PassengerRegistration) error {
	if err := m.api.RegisterPassenger(ctx, data); err != nil {
		return fmt.Errorf("register passenger: %w", err)
	}
	m.log.Info(ctx, "passenger registered", "username", data.Username)
	return nil
}

// Register dispatches on role: passengers get the passenger endpoint, every
// other role goes through driver registration.
func (m *Manager) Register(ctx context.Context, role claims.Role, data models.DriverRegistration) error {
	if role == claims.RolePassenger {
		return m.RegisterPassenger(ctx, data.Passenger())
	}
	return m.RegisterDriver(ctx, data)
}

// Logout removes both tokens and makes the session anonymous. Subscribers
// are notified only if the session was not anonymous already. A store
// failure is returned but the session still becomes anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	m.op.Lock()
	u, err := m.reset(ctx, "logout")
	m.op.Unlock()

	if u.changed {
		m.log.Info(ctx, "logged out")
	}
	m.notify(u)
	return err
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Subscribe registers fn to be called after every state change. Callbacks
// run on the goroutine that made the change, without locks held, so they may
// call back into the Manager. A callback always receives the current state:
// when a newer change happens during delivery, the older delivery stops and
// the newer one reaches every subscriber. The returned func removes the
// subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// set replaces the state. The version moves only on an actual change.
func (m *Manager) set(next Snapshot) update {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := !m.state.equal(next)
	m.state = next
	if changed {
		m.version++
	}
	return update{snap: next.clone(), version: m.version, changed: changed}
}

// notify delivers u to the subscribers in subscription order. Delivery
// stops once the state has moved past u.version.
func (m *Manager) notify(u update) {
	if !u.changed {
		return
	}

	m.mu.RLock()
	ids := make([]int, 0, len(m.subs))
	for id := 0; id < m.nextSub; id++ {
		if _, ok := m.subs[id]; ok {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.mu.RLock()
		fn, ok := m.subs[id]
		current := m.version == u.version
		snap := m.state.clone()
		m.mu.RUnlock()

		if !current {
			return
		}
		if ok {
			fn(snap)
		}
	}
}

func (s Snapshot) clone() Snapshot {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

func (s Snapshot) equal(o Snapshot) bool {
	if s.Status != o.Status {
		return false
	}
	if s.Identity == nil || o.Identity == nil {
		return s.Identity == o.Identity
	}
	return *s.Identity == *o.Identity
}
