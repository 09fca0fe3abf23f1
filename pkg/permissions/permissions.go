// Package permissions maps user roles to the set of capabilities they may
// exercise. The table is static: admins can do everything a chef can, chefs
// everything a regular user can.
package permissions

// Capability names double as role names; a role grants its own capability
// plus those of every role below it.
const (
	RoleUser  = "user"
	RoleChef  = "chef"
	RoleAdmin = "admin"
)

var roles = map[string][]string{
	RoleAdmin: {RoleAdmin, RoleChef, RoleUser},
	RoleChef:  {RoleChef, RoleUser},
	RoleUser:  {RoleUser},
}

// Allowed reports whether the given primary role grants the required
// capability. An empty requirement always passes; an unknown role grants
// nothing.
func Allowed(role, required string) bool {
	if required == "" {
		return true
	}
	for _, cap := range roles[role] {
		if cap == required {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set granted by a role, nil for unknown
// roles. The returned slice must not be mutated.
func Capabilities(role string) []string {
	return roles[role]
}
