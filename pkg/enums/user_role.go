package enums

import "fmt"

// UserRole gates access to administrative operations.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleVendor UserRole = "vendor"
	UserRoleStaff  UserRole = "staff"
)

var validUserRoles = []UserRole{UserRoleAdmin, UserRoleVendor, UserRoleStaff}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
