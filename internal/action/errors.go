package action

import "errors"

// ErrRestricted is matched by every RestrictedError.
var ErrRestricted = errors.New("restricted operation")

// RestrictedError is a business rule specific to one action that denies an
// otherwise authorized caller.
type RestrictedError struct {
	Reason string
}

func restricted(reason string) error {
	return &RestrictedError{Reason: reason}
}

func (e *RestrictedError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrRestricted) succeed.
func (e *RestrictedError) Is(target error) bool {
	return target == ErrRestricted
}
