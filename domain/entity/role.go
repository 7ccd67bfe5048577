package entity

import "slices"

// Role is the name of an identity-store role.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleUser          Role = "User"
)

// DefaultRole is assigned by plain registration.
const DefaultRole = RoleUser

func (r Role) String() string {
	return string(r)
}

// Roles is a convenience slice of Role.
type Roles []Role

func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}
	return result
}

func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		result = append(result, Role(s))
	}
	return result
}
