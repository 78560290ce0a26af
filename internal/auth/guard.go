package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when a verified identity lacks the required role.
var ErrForbidden = errors.New("forbidden")

// AllowList is the explicit set of roles permitted to perform one operation.
// There is no implied ordering between roles: superadmin passes an
// admin-gated check only if it is listed.
type AllowList []string

// Allows reports whether role is a member of the list.
func (l AllowList) Allows(role string) bool {
	for _, allowed := range l {
		if allowed == role {
			return true
		}
	}
	return false
}

func (l AllowList) String() string {
	return strings.Join(l, ", ")
}

// Permit returns nil if role is in allowed and an error wrapping
// ErrForbidden otherwise.
func Permit(allowed AllowList, role string) error {
	if allowed.Allows(role) {
		return nil
	}
	return fmt.Errorf("%w: role %q is not one of [%s]", ErrForbidden, role, allowed)
}
