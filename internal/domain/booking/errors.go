package booking

import "errors"

var (
	ErrNotFound        = errors.New("booking not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrInvalidRequest  = errors.New("invalid booking request")
	ErrConflict        = errors.New("requested slot overlaps an existing booking")
	// ErrTransient means lock contention exhausted the retry budget; the
	// caller may retry the same request unchanged.
	ErrTransient = errors.New("transient storage contention, retry the request")
)
