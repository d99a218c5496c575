// Package policy decides whether a principal may perform a named action.
package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/balcao/balcao/internal/model"
)

// ErrForbidden is matched by every authorization failure.
var ErrForbidden = errors.New("forbidden")

// ForbiddenError reports a denied action and the least role that would be allowed.
type ForbiddenError struct {
	Action   string
	Required model.Role
}

func (e *ForbiddenError) Error() string {
	if e.Required == "" {
		return "you are not allowed to perform this action"
	}
	return fmt.Sprintf("this action requires the %s role", e.Required)
}

// Is makes errors.Is(err, ErrForbidden) succeed.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// Requirement is the set of roles allowed to perform an action.
type Requirement struct {
	roles []model.Role
}

// Authenticated allows any verified principal.
func Authenticated() Requirement {
	return Requirement{roles: slices.Clone(model.ValidRoles)}
}

// AtLeast allows min and every role above it.
func AtLeast(min model.Role) Requirement {
	var roles []model.Role
	for _, r := range model.ValidRoles {
		if r.AtLeast(min) {
			roles = append(roles, r)
		}
	}
	return Requirement{roles: roles}
}

// OneOf allows exactly the listed roles.
func OneOf(roles ...model.Role) Requirement {
	return Requirement{roles: slices.Clone(roles)}
}

// Exactly allows only role.
func Exactly(role model.Role) Requirement {
	return Requirement{roles: []model.Role{role}}
}

// Allows reports whether role satisfies the requirement.
func (r Requirement) Allows(role model.Role) bool {
	return role.IsValid() && slices.Contains(r.roles, role)
}

// Minimum returns the lowest-ranked allowed role, or "" when none is allowed.
func (r Requirement) Minimum() model.Role {
	var min model.Role
	for _, role := range r.roles {
		if !role.IsValid() {
			continue
		}
		if min == "" || role.Rank() < min.Rank() {
			min = role
		}
	}
	return min
}

func (r Requirement) String() string {
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = string(role)
	}
	return strings.Join(names, "|")
}

// Table maps action names to requirements. It is read-only after construction.
type Table map[string]Requirement

// Authorize allows claims to perform action or returns a *ForbiddenError.
// Actions missing from the table are denied.
func (t Table) Authorize(action string, claims model.Claims) error {
	req, ok := t[action]
	if !ok {
		return &ForbiddenError{Action: action}
	}
	if !req.Allows(claims.Role) {
		return &ForbiddenError{Action: action, Required: req.Minimum()}
	}
	return nil
}

// Requirement returns the requirement declared for action.
func (t Table) Requirement(action string) (Requirement, bool) {
	req, ok := t[action]
	return req, ok
}
