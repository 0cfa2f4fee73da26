package enums

import "fmt"

// StaffRole identifies an operator account's role.
type StaffRole string

const (
	StaffRoleOwner   StaffRole = "owner"
	StaffRoleManager StaffRole = "manager"
	StaffRoleCashier StaffRole = "cashier"
)

var validStaffRoles = []StaffRole{
	StaffRoleOwner,
	StaffRoleManager,
	StaffRoleCashier,
}

// String implements fmt.Stringer.
func (s StaffRole) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known StaffRole.
func (s StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}

// StaffRoles returns all known roles.
func StaffRoles() []StaffRole {
	out := make([]StaffRole, len(validStaffRoles))
	copy(out, validStaffRoles)
	return out
}
