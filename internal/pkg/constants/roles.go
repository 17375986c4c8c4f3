package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Manager    = "manager"
	Tenant     = "tenant"
)

// ValidRoles is the set of allowed DB enum values for user role (must match enum_Users_role).
var ValidRoles = []string{Tenant, Manager, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminRole returns true for roles that see every building in portfolio views
// instead of only their own operator org's.
func IsAdminRole(role string) bool {
	return role == Admin || role == Superadmin
}
