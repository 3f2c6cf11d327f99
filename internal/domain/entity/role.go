package entity

import "strings"

// Role identifies a participant's position in the approval chain
type Role string

const (
	RoleL0    Role = "L0"
	RoleL1    Role = "L1"
	RoleL2    Role = "L2"
	RoleL3    Role = "L3"
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleL0:    true,
	RoleL1:    true,
	RoleL2:    true,
	RoleL3:    true,
	RoleAdmin: true,
}

// approverRoles are the roles allowed to approve or reject a request
var approverRoles = map[Role]bool{
	RoleL2: true,
	RoleL3: true,
}

// ParseRole resolves a free-form role string to its canonical Role value.
// Matching is case-insensitive; unknown strings return false.
func ParseRole(s string) (Role, bool) {
	for role := range validRoles {
		if strings.EqualFold(string(role), s) {
			return role, true
		}
	}
	return "", false
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsApprover returns true if the role may act on pending requests
func (r Role) IsApprover() bool {
	return approverRoles[r]
}

// Equals compares two roles case-insensitively
func (r Role) Equals(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// String returns the canonical string representation of the role
func (r Role) String() string {
	return string(r)
}
