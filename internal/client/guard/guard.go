// Package guard decides whether the current session may see a page. The
// decision itself is a pure function of a session snapshot and an area;
// Guard applies it to the navigation history.
package guard

import (
	"context"

	"github.com/dmitrijs2005/ridegate/internal/client/navigation"
	"github.com/dmitrijs2005/ridegate/internal/client/session"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/dmitrijs2005/ridegate/internal/logging"
)

// Outcome is what the client should do with a page.
type Outcome int

const (
	// Loading means the session is not known yet; show a placeholder.
	Loading Outcome = iota
	Redirect
	Render
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "loading"
	}
}

// Decision is the result of Decide. Path and Replace are set for Redirect.
type Decision struct {
	Outcome Outcome
	Path    string
	Replace bool
}

var toLogin = Decision{Outcome: Redirect, Path: common.LoginPath, Replace: true}

// Decide applies the area's role rule to s. Public areas always render.
// Anonymous users and users without an allowed role are both sent to login.
func Decide(s session.Snapshot, a Area) Decision {
	if a.Public() {
		return Decision{Outcome: Render}
	}

	switch s.Status {
	case session.StatusUnknown:
		return Decision{Outcome: Loading}
	case session.StatusAuthenticated:
		if s.Identity != nil && s.Identity.Role.In(a.Roles) {
			return Decision{Outcome: Render}
		}
	}
	return toLogin
}

// Source is the part of session.Manager the guard reads.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Guard resolves paths against a route table and moves the navigator.
type Guard struct {
	src   Source
	nav   navigation.Navigator
	log   logging.Logger
	areas []Area
}

// New builds a Guard. Without areas DefaultAreas is used.
func New(src Source, nav navigation.Navigator, log logging.Logger, areas ...Area) *Guard {
	if len(areas) == 0 {
		areas = DefaultAreas()
	}
	return &Guard{src: src, nav: nav, log: log.With("component", "guard"), areas: areas}
}

// Areas returns the route table.
func (g *Guard) Areas() []Area {
	return append([]Area(nil), g.areas...)
}

// Resolve finds the area p belongs to.
func (g *Guard) Resolve(p string) (Area, bool) {
	p = cleanPath(p)
	for _, a := range g.areas {
		if a.Matches(p) {
			return a, true
		}
	}
	return Area{}, false
}

// Check decides p against the current session without navigating. Paths
// outside every area redirect to login.
func (g *Guard) Check(p string) Decision {
	a, ok := g.Resolve(p)
	if !ok {
		return toLogin
	}
	return Decide(g.src.Snapshot(), a)
}

// Visit decides p and moves there, or to login. Loading leaves the
// navigator where it is.
func (g *Guard) Visit(p string) Decision {
	p = cleanPath(p)
	d := g.Check(p)

	switch d.Outcome {
	case Render:
		if g.nav.Current() != p {
			g.nav.Navigate(p, false)
		}
	case Redirect:
		g.log.Debug(context.Background(), "access denied", "path", p, "redirect", d.Path)
		g.nav.Navigate(d.Path, d.Replace)
	}
	return d
}

// Watch re-checks the current page after every session change, so logging
// out or an expired session leaves a protected page immediately. Call the
// returned func to stop.
func (g *Guard) Watch() (stop func()) {
	return g.src.Subscribe(func(s session.Snapshot) {
		cur := g.nav.Current()
		a, ok := g.Resolve(cur)
		if !ok {
			g.nav.Navigate(toLogin.Path, toLogin.Replace)
			return
		}
		if d := Decide(s, a); d.Outcome == Redirect && cur != d.Path {
			g.log.Info(context.Background(), "leaving protected page", "path", cur, "status", s.Status.String())
			g.nav.Navigate(d.Path, d.Replace)
		}
	})
}

// Home is the landing page for the current session: the role's dashboard
// when signed in, login otherwise.
func (g *Guard) Home() string {
	s := g.src.Snapshot()
	if !s.Authenticated() {
		return common.LoginPath
	}
	return HomeFor(s.Identity.Role)
}
