package schedule

import "errors"

var (
	ErrNotFound       = errors.New("blocked time not found")
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrConflict       = errors.New("blocked time overlaps an existing block")
	ErrInvalid        = errors.New("invalid blocked time")
)
