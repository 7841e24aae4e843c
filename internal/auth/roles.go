package auth

import "strings"

// Role is a caller's permission level. Each role includes the ones below it.
type Role string

const (
	// RoleViewer may compute schedules and list document variants.
	RoleViewer Role = "viewer"
	// RoleOperator may also generate documents.
	RoleOperator Role = "operator"
	// RoleAdmin has every permission.
	RoleAdmin Role = "admin"
)

// roleLadder orders roles from least to most privileged.
var roleLadder = []Role{RoleViewer, RoleOperator, RoleAdmin}

// NormalizeRole maps a claim value such as " Operator" to a known role.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role.level() == 0 {
		return "", false
	}
	return role, true
}

// Satisfies reports whether r grants at least the required role.
// Unknown roles satisfy nothing.
func (r Role) Satisfies(required Role) bool {
	level := r.level()
	return level > 0 && level >= required.level()
}

func (r Role) level() int {
	for i, candidate := range roleLadder {
		if candidate == r {
			return i + 1
		}
	}
	return 0
}
