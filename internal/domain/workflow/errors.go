package workflow

import "errors"

var (
	// ErrForbidden is returned when a role or ownership authority check fails
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced request does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed input such as an empty workflow order
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict is returned when a concurrent modification is detected during an atomic update
	ErrConflict = errors.New("conflict")

	// ErrAuthentication is returned when a credential cannot be resolved to an actor
	ErrAuthentication = errors.New("authentication failed")
)
