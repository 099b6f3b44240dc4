package domain

// Role values carried by a verified identity. The set is fixed: tenant-defined
// roles are out of scope.
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// Identity is the verified caller presented on every request. The domain core
// trusts it and never re-authenticates.
type Identity struct {
	EmployeeID string
	Role       string
}

// IsReviewer reports whether the identity may approve or reject requests.
func (i Identity) IsReviewer() bool {
	switch i.Role {
	case RoleManager, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdministrative reports whether the identity may act on records it does
// not own (cancel on behalf of an employee, adjust balances).
func (i Identity) IsAdministrative() bool {
	return i.Role == RoleHR || i.Role == RoleAdmin
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}
