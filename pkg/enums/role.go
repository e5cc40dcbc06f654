package enums

import "fmt"

// Role is the visibility scope an authenticated principal acts under.
type Role string

const (
	RoleBarangay  Role = "barangay"
	RoleMunicipal Role = "municipal"
	RoleFarmer    Role = "farmer"
)

var validRoles = []Role{
	RoleBarangay,
	RoleMunicipal,
	RoleFarmer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to a User rather than a Farmer.
func (r Role) IsStaff() bool {
	return r == RoleBarangay || r == RoleMunicipal
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
