package claims

import "strings"

// Role is the closed set of account roles carried in the access token.
type Role string

const (
	RoleDriver    Role = "DRIVER"
	RolePassenger Role = "PASSENGER"
	RoleAdmin     Role = "ADMIN"
)

// IsValid checks if the role is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleDriver, RolePassenger, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// In reports whether r is listed in roles.
func (r Role) In(roles []Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// AllRoles returns every known role.
func AllRoles() []Role {
	return []Role{RoleDriver, RolePassenger, RoleAdmin}
}

// ParseRole parses s case-insensitively.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	return role, role.IsValid()
}
