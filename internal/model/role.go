package model

// Role of an operator
type Role string

// Role codes as constants
const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "VENDEDOR"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}
