package membership

// MemberRole is the member's role. A dedicated enum rather than a marker
// string, so admin checks are a field comparison instead of a substring scan.
type MemberRole string

const (
	// RoleMember is a regular member
	RoleMember MemberRole = "member"
	// RoleAdmin can manage members, events, and settings
	RoleAdmin MemberRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r MemberRole) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []MemberRole {
	return []MemberRole{
		RoleMember,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a MemberRole type
func ParseRole(roleStr string) (MemberRole, bool) {
	role := MemberRole(roleStr)
	return role, role.IsValid()
}
