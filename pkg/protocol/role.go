package protocol

// Role determines which dashboard and menu entry a logged-in user sees.
type Role int

const (
	RoleOther Role = iota
	RoleAdmin
	RoleInstitution
)

// ParseRole maps the server's role tag to a Role. Unknown tags are RoleOther.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "institution":
		return RoleInstitution
	default:
		return RoleOther
	}
}

// String returns the server's role tag.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleInstitution:
		return "institution"
	default:
		return "other"
	}
}

// MenuEntry is the dashboard link shown in the user menu.
type MenuEntry struct {
	Label string
	Page  string
}

type roleInfo struct {
	dashboardPath string
	menu          MenuEntry
}

var roles = map[Role]roleInfo{
	RoleAdmin: {
		dashboardPath: "/admin/dashboard_data",
		menu:          MenuEntry{Label: "Admin Dashboard", Page: "admin-dashboard"},
	},
	RoleInstitution: {
		dashboardPath: "/institution/dashboard_data",
		menu:          MenuEntry{Label: "Institution Dashboard", Page: "institution-dashboard"},
	},
}

// DashboardPath returns the dashboard endpoint for the role, if it has one.
func (r Role) DashboardPath() (string, bool) {
	info, ok := roles[r]
	return info.dashboardPath, ok
}

// MenuEntry returns the dashboard menu entry for the role, if it has one.
func (r Role) MenuEntry() (MenuEntry, bool) {
	info, ok := roles[r]
	return info.menu, ok
}
