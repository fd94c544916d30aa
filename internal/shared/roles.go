package shared

import (
	"errors"
	"strings"
)

// Role identifies which budget share an order draws against.
type Role string

const (
	RoleBuyer   Role = "BUYER"
	RoleManager Role = "MANAGER"
)

// ErrUnknownRole indicates a role token that maps to no canonical role.
var ErrUnknownRole = errors.New("shared: unknown role")

// Legacy dashboards recorded roles in Portuguese. Normalization happens
// here at the boundary; everything past it compares canonical values only.
var roleAliases = map[string]Role{
	"BUYER":     RoleBuyer,
	"COMPRADOR": RoleBuyer,
	"MANAGER":   RoleManager,
	"GERENTE":   RoleManager,
}

// ParseRole resolves a raw role token, case-insensitively, to its
// canonical value.
func ParseRole(raw string) (Role, error) {
	role, ok := roleAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Valid reports whether the role is one of the canonical values.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleManager
}
