package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Runs attendance and payroll
	RoleEmployee Role = "employee" // Read-only
)

// Actor is the authenticated caller, taken from the access token.
type Actor struct {
	UserID string
	Role   Role
}

// IsManager checks if actor is manager or owner
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleOwner
}
