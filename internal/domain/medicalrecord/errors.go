package medicalrecord

import "errors"

var (
	ErrNotFound      = errors.New("medical record not found")
	ErrAlreadyExists = errors.New("medical record already exists for this booking")
)
