package models

import "fmt"

// Role is a board-scoped permission level. Roles are totally ordered:
// viewer < editor < admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer: 0,
	RoleEditor: 1,
	RoleAdmin:  2,
}

// Rank returns the position of r in the role order, or -1 for unknown roles
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// AtLeast reports whether r grants everything required grants.
// Unknown roles never satisfy and are never satisfied.
func (r Role) AtLeast(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	return r.Rank() >= required.Rank()
}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q: must be one of viewer, editor, admin", s)
	}
	return r, nil
}
