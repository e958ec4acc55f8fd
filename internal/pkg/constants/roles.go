package constants

const (
	Admin     = "admin"
	Officer   = "officer"
	Employee  = "employee"
	Volunteer = "volunteer"
	Viewer    = "viewer"
)

// ValidRoles is the set of allowed values for users.role.
var ValidRoles = []string{Viewer, Volunteer, Employee, Officer, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
