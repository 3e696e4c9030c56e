package garment

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid garment")
	ErrGarmentNotFound = errors.New("garment not found")
	ErrForbidden       = errors.New("garment belongs to another user")
)
