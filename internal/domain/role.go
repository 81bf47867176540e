package domain

import "strings"

// Role is the single authorization role carried by an Identity.
type Role string

const (
	RoleUser     Role = "USER"
	RoleReviewer Role = "REVIEWER"
	RoleAdmin    Role = "ADMIN"
)

// AuthorityPrefix marks role-bearing entries in a token's authorities list.
const AuthorityPrefix = "ROLE_"

// ParseRole maps an exact role name onto the closed enumeration.
func ParseRole(name string) (Role, bool) {
	switch Role(strings.TrimSpace(name)) {
	case RoleUser:
		return RoleUser, true
	case RoleReviewer:
		return RoleReviewer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// LandingPath is where a freshly logged-in user of this role is sent.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleReviewer:
		return "/reviewer"
	default:
		return "/dashboard"
	}
}

// NavLink is one entry of the role-specific navigation menu.
type NavLink struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// NavLinks returns the menu for the given identity. A nil identity gets the
// anonymous menu; unknown roles fall back to the USER menu.
func NavLinks(identity *Identity) []NavLink {
	if identity == nil {
		return []NavLink{
			{Label: "Login", Path: "/login"},
			{Label: "Register", Path: "/register"},
		}
	}

	switch identity.Role {
	case RoleAdmin:
		return []NavLink{
			{Label: "Dashboard", Path: "/admin"},
			{Label: "All Reports", Path: "/admin/reports"},
			{Label: "Users", Path: "/admin/users"},
		}
	case RoleReviewer:
		return []NavLink{
			{Label: "Dashboard", Path: "/reviewer"},
			{Label: "Review", Path: "/review"},
		}
	default:
		return []NavLink{
			{Label: "Dashboard", Path: "/dashboard"},
			{Label: "Report", Path: "/report"},
			{Label: "My Reports", Path: "/my-reports"},
		}
	}
}
