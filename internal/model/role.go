// Package model defines domain entities for the application.
package model

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Role is the privilege tier of an authenticated principal.
type Role string

// Role constants, ordered by privilege.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleRoot  Role = "root"
)

// ValidRoles contains all valid roles, lowest privilege first.
var ValidRoles = []Role{RoleUser, RoleAdmin, RoleRoot}

// ErrUnknownRole is returned when a role string is not one of ValidRoles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return slices.Contains(ValidRoles, r)
}

// Rank returns the privilege rank of the role. Unknown roles rank below user.
func (r Role) Rank() int {
	return slices.Index(ValidRoles, r)
}

// AtLeast reports whether r grants at least the privileges of min.
// root ⊇ admin ⊇ user.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && min.IsValid() && r.Rank() >= min.Rank()
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Claims is the trusted identity extracted from a verified bearer token.
// It is produced only by the credential verifier.
type Claims struct {
	SubjectID string
	Role      Role
	ExpiresAt time.Time
}

// HasRole reports whether the claims carry one of the given roles exactly.
func (c Claims) HasRole(roles ...Role) bool {
	return slices.Contains(roles, c.Role)
}
