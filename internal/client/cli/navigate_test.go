package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/session"
	"github.com/dmitrijs2005/ridegate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	s := &fakeSession{snap: session.Snapshot{Status: session.StatusAuthenticated, Identity: identity(claims.RoleDriver)}}
	a, out := newTestApp(t, s, &fakeAPI{}, "")

	require.NoError(t, a.Open(context.Background(), "/driver/vehicle"))
	assert.Equal(t, "Opened /driver/vehicle\n", out.String())

	out.Reset()
	require.NoError(t, a.Open(context.Background(), "/admin/logs"))
	assert.Equal(t, "Access denied, redirected to /login\n", out.String())
	assert.Equal(t, common.LoginPath, a.nav.Current())

	out.Reset()
	s.snap = session.Snapshot{Status: session.StatusUnknown}
	require.NoError(t, a.Open(context.Background(), "/driver/schedule"))
	assert.Equal(t, "Loading...\n", out.String())
}

func TestBack(t *testing.T) {
	s := &fakeSession{snap: session.Snapshot{Status: session.StatusAuthenticated, Identity: identity(claims.RolePassenger)}}
	a, out := newTestApp(t, s, &fakeAPI{}, "")

	require.NoError(t, a.Back(context.Background()))
	assert.Equal(t, "No previous page\n", out.String())

	a.guard.Visit("/passenger/dashboard")
	a.guard.Visit("/passenger/bookings")
	out.Reset()
	require.NoError(t, a.Back(context.Background()))
	assert.Equal(t, "/passenger/dashboard", a.nav.Current())
	assert.Equal(t, "Opened /passenger/dashboard\n", out.String())
}

func TestPages(t *testing.T) {
	s := &fakeSession{snap: session.Snapshot{Status: session.StatusAuthenticated, Identity: identity(claims.RolePassenger)}}
	a, out := newTestApp(t, s, &fakeAPI{}, "")

	require.NoError(t, a.Pages(context.Background()))
	assert.Equal(t, "  /passenger/dashboard\n  /passenger/bookings\n  /passenger/settings\n", out.String())

	out.Reset()
	s.snap = session.Snapshot{Status: session.StatusAnonymous}
	require.NoError(t, a.Pages(context.Background()))
	assert.Empty(t, out.String())
}
