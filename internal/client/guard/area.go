package guard

import (
	"path"
	"strings"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/common"
)

// Area is a group of pages under one path prefix. Roles lists who may enter;
// a nil Roles makes the area public.
type Area struct {
	Name   string
	Prefix string
	Roles  []claims.Role
	// Pages are the known sub-paths, for listings only. Unknown sub-paths of
	// a protected area are still guarded by its roles.
	Pages []string
}

// Public reports whether the area is open to everyone.
func (a Area) Public() bool { return a.Roles == nil }

// Matches reports whether p is the area prefix or below it.
func (a Area) Matches(p string) bool {
	return p == a.Prefix || strings.HasPrefix(p, a.Prefix+"/")
}

// Route tables of the client.
var (
	LoginArea    = Area{Name: "login", Prefix: common.LoginPath}
	RegisterArea = Area{Name: "register", Prefix: "/register"}

	DriverArea = Area{
		Name:   "driver",
		Prefix: "/driver",
		Roles:  []claims.Role{claims.RoleDriver},
		Pages:  []string{"dashboard", "vehicle", "schedule", "settings"},
	}
	PassengerArea = Area{
		Name:   "passenger",
		Prefix: "/passenger",
		Roles:  []claims.Role{claims.RolePassenger},
		Pages:  []string{"dashboard", "bookings", "settings"},
	}
	AdminArea = Area{
		Name:   "admin",
		Prefix: "/admin",
		Roles:  []claims.Role{claims.RoleAdmin},
		Pages:  []string{"dashboard", "drivers", "routes", "vehicles", "logs", "settings"},
	}
)

// DefaultAreas returns the route table used when Guard is built without one.
func DefaultAreas() []Area {
	return []Area{LoginArea, RegisterArea, DriverArea, PassengerArea, AdminArea}
}

// HomeFor is the landing page for role after login. Unknown roles land on
// the passenger dashboard.
func HomeFor(role claims.Role) string {
	switch role {
	case claims.RoleDriver:
		return DriverArea.Prefix + "/dashboard"
	case claims.RoleAdmin:
		return AdminArea.Prefix + "/dashboard"
	default:
		return PassengerArea.Prefix + "/dashboard"
	}
}

// cleanPath makes p absolute and removes dot segments and trailing slashes.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
