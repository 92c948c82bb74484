package domain

import derrors "bloodbank/pkg/domain-errors"

// Role is the closed set of account roles. Authorization decisions compare
// roles only at the HTTP boundary (middleware.RequireRole); core services never
// branch on a caller's role.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleStaff         Role = "staff"
	RoleDonor         Role = "donor"
	RoleMedicalCenter Role = "medical_center"
)

var validRoles = map[Role]bool{
	RoleAdmin:         true,
	RoleStaff:         true,
	RoleDonor:         true,
	RoleMedicalCenter: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", derrors.Newf(derrors.CodeInvalidInput, "unknown role %q", s)
	}
	return r, nil
}

// IsValid reports whether the role is one of the supported values.
func (r Role) IsValid() bool { return validRoles[r] }

// CanApprove reports whether the role may confirm or cancel registrations and
// fulfil blood requests.
func (r Role) CanApprove() bool { return r == RoleAdmin || r == RoleStaff }

func (r Role) String() string { return string(r) }
