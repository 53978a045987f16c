package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/client"
	"github.com/dmitrijs2005/ridegate/internal/client/config"
	"github.com/dmitrijs2005/ridegate/internal/client/guard"
	"github.com/dmitrijs2005/ridegate/internal/client/interceptor"
	"github.com/dmitrijs2005/ridegate/internal/client/models"
	"github.com/dmitrijs2005/ridegate/internal/client/navigation"
	"github.com/dmitrijs2005/ridegate/internal/client/session"
	"github.com/dmitrijs2005/ridegate/internal/client/tokenstore"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
)

// SessionService is the session.Manager surface the terminal uses.
type SessionService interface {
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, username, password string) (*session.Identity, error)
	Register(ctx context.Context, role claims.Role, data models.DriverRegistration) error
	Logout(ctx context.Context) error
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// APIService is the generic REST surface behind the "get" command.
type APIService interface {
	GetJSON(ctx context.Context, path string, out any) error
}

type App struct {
	session SessionService
	api     APIService
	guard   *guard.Guard
	nav     *navigation.History
	log     logging.Logger
	closer  io.Closer
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the token store and wires the client components.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := tokenstore.Open(ctx, c.StoreDriver, c.StorePath, log)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	nav := navigation.NewHistory(common.LoginPath, nil)

	// The interceptor ends sessions through the manager, which is built
	// after the API client it is handed.
	var mgr *session.Manager
	ic := interceptor.New(store, interceptor.TerminatorFunc(func(ctx context.Context) error {
		return mgr.Logout(ctx)
	}), nav, log)

	api := client.NewHTTPClient(c.ServerBaseURL, ic.RoundTripper(nil), log)
	mgr = session.New(store, api, log)

	return newApp(mgr, api, nav, log, store, os.Stdin, os.Stdout), nil
}

func newApp(s SessionService, api APIService, nav *navigation.History, log logging.Logger, closer io.Closer, in io.Reader, out io.Writer) *App {
	return &App{
		session: s,
		api:     api,
		guard:   guard.New(s, nav, log),
		nav:     nav,
		log:     log,
		closer:  closer,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run restores the previous session, lands on the home page and runs the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.session.Bootstrap(ctx); err != nil {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}

	stop := a.guard.Watch()
	defer stop()

	a.guard.Visit(a.guard.Home())
	if s := a.session.Snapshot(); s.Authenticated() {
		fmt.Fprintf(a.out, "Signed in as %s (%s)\n", s.Identity.Username, s.Identity.Role)
	}

	fmt.Fprintln(a.out, "Welcome to ridegate (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// Close releases the token store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		return a.nav.Current()
	}
	return fmt.Sprintf("(%s %s) %s", s.Identity.Username, s.Identity.Role, a.nav.Current())
}
