package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredential is returned when a supplied password does not
	// match the stored one.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrInvalidOperation is returned for requests that are well formed but
	// not allowed, such as deleting your own account.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrAvatarStorageDisabled is returned when no object storage is configured.
	ErrAvatarStorageDisabled = errors.New("avatar storage is not configured")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
