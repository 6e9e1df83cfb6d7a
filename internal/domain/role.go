package domain

// Role is the backend's numeric role id.
type Role int

const (
	RoleAdmin       Role = 1
	RoleCoordinator Role = 2
	RoleProfessor   Role = 3
	RoleStudent     Role = 4
	RoleReviewer    Role = 5
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCoordinator:
		return "coordinator"
	case RoleProfessor:
		return "professor"
	case RoleStudent:
		return "student"
	case RoleReviewer:
		return "reviewer"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a role the backend issues.
func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleReviewer
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}
